package core

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jo-hoe/lensgallery/internal/gallery"
)

// Card is the rendered form of one displayable entry.
type Card struct {
	ID          string
	Title       string
	Description string
	BeforeURL   string
	AfterURL    string
	Likes       int
}

// Projection is the rendered list: the cards and the markup built from them.
type Projection struct {
	Cards []Card
	HTML  string
}

// DefaultCardTemplate renders cards without any transport specific attributes.
// Every interactive control carries data-id so events can address the entry.
var DefaultCardTemplate = template.Must(template.New("cards").Parse(`{{range .}}<div class="card" data-id="{{.ID}}">
<div class="card-images">
<img src="{{.BeforeURL}}" alt="Before">
<img src="{{.AfterURL}}" alt="After">
</div>
<div class="card-content">
<h3>{{.Title}}</h3>
<p>{{.Description}}</p>
</div>
<div class="card-actions">
<div class="like-section">
<button class="like-btn" data-id="{{.ID}}">&#10084;&#65039;</button>
<span class="like-count" data-id="{{.ID}}">{{.Likes}}</span>
</div>
<div class="action-buttons">
<button class="edit-btn" data-id="{{.ID}}">Edit</button>
<button class="delete-btn" data-id="{{.ID}}">Delete</button>
</div>
</div>
</div>
{{end}}`))

// BuildCards keeps the entries that have both images, in server order.
func BuildCards(entries []gallery.Entry) []Card {
	cards := make([]Card, 0, len(entries))
	for _, entry := range entries {
		if !entry.Displayable() {
			continue
		}
		cards = append(cards, Card{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			BeforeURL:   entry.BeforeImage.URL,
			AfterURL:    entry.AfterImage.URL,
			Likes:       entry.LikeCount(),
		})
	}
	return cards
}

// RenderProjection executes tmpl over cards.
func RenderProjection(tmpl *template.Template, cards []Card) (Projection, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cards); err != nil {
		return Projection{}, fmt.Errorf("failed to render cards: %w", err)
	}
	return Projection{Cards: cards, HTML: buf.String()}, nil
}

// CardText reads the title and description currently rendered for the card with id.
func (p Projection) CardText(id string) (title string, description string, ok bool) {
	if id == "" || p.HTML == "" {
		return "", "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		return "", "", false
	}
	card := doc.Find(".card").FilterFunction(func(_ int, s *goquery.Selection) bool {
		cardID, _ := s.Attr("data-id")
		return cardID == id
	}).First()
	if card.Length() == 0 {
		return "", "", false
	}
	return card.Find("h3").First().Text(), card.Find("p").First().Text(), true
}
