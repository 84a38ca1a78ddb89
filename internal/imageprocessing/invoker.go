package imageprocessing

import (
	"fmt"
	"log/slog"
	"time"
)

// CommandInvoker runs a fixed pipeline of commands.
type CommandInvoker struct {
	commands []Command
}

func NewCommandInvoker(commands []Command) *CommandInvoker {
	return &CommandInvoker{
		commands: commands,
	}
}

// Len returns the number of commands in the pipeline.
func (i *CommandInvoker) Len() int {
	return len(i.commands)
}

// Execute feeds imageData through every command in sequence.
func (i *CommandInvoker) Execute(imageData []byte) ([]byte, error) {
	if len(i.commands) == 0 {
		return imageData, nil
	}

	start := time.Now()
	currentData := imageData
	for idx, command := range i.commands {
		processedData, err := command.Execute(currentData)
		if err != nil {
			slog.Debug("image command failed",
				"index", idx,
				"command_name", command.Name(),
				"input_size_bytes", len(currentData),
				"error", err)
			return nil, fmt.Errorf("command %s (index %d) failed: %w", command.Name(), idx, err)
		}
		currentData = processedData
	}

	slog.Debug("image pipeline completed",
		"command_count", len(i.commands),
		"input_size_bytes", len(imageData),
		"output_size_bytes", len(currentData),
		"duration_ms", time.Since(start).Milliseconds())
	return currentData, nil
}
