package core

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CountFormatter renders counters with locale specific digit grouping.
type CountFormatter struct {
	tag language.Tag
}

func NewCountFormatter(locale string) (*CountFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("unsupported locale %q: %w", locale, err)
	}
	return &CountFormatter{tag: tag}, nil
}

// Format returns n grouped for the locale, e.g. 1234 -> "1,234" for en.
func (f *CountFormatter) Format(n int64) string {
	return message.NewPrinter(f.tag).Sprintf("%d", n)
}
