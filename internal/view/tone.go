// Package view turns backend records into the rows, badges and summaries the
// console renders.
package view

// Tone is the colour family of a badge.
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneAmber  Tone = "amber"
	ToneRed    Tone = "red"
	ToneBlue   Tone = "blue"
	TonePurple Tone = "purple"
	ToneGray   Tone = "gray"
)

// Badge is a short label with a tone.
type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

func badge(label string, tones map[string]Tone) Badge {
	tone, ok := tones[label]
	if !ok {
		tone = ToneGray
	}
	return Badge{Label: label, Tone: tone}
}
