package mode

import (
	"fmt"
	"math/rand"
	"strings"
)

// Mode selects the prompt phrasing, sampling temperature, and output
// decoration for a contemplation.
type Mode string

const (
	Standard      Mode = "standard"
	Poetic        Mode = "poetic"
	Philosophical Mode = "philosophical"
	Scientific    Mode = "scientific"
	Psychological Mode = "psychological"
	Mystical      Mode = "mystical"
)

// All returns every mode in declaration order.
func All() []Mode {
	return []Mode{Standard, Poetic, Philosophical, Scientific, Psychological, Mystical}
}

// Parse validates a mode name. The set is closed; unknown names are errors.
func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Standard, Poetic, Philosophical, Scientific, Psychological, Mystical:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

var temperatures = map[Mode]float64{
	Standard:      0.7,
	Poetic:        0.9,
	Philosophical: 0.8,
	Scientific:    0.5,
	Psychological: 0.75,
	Mystical:      1.0,
}

// Temperature returns the fixed sampling temperature for the mode.
func (m Mode) Temperature() float64 {
	if t, ok := temperatures[m]; ok {
		return t
	}
	return temperatures[Standard]
}

var descriptions = map[Mode]string{
	Standard:      "Standard recursive thought generation",
	Poetic:        "Poetic and metaphorical responses",
	Philosophical: "Philosophical analysis and reflection",
	Scientific:    "Scientific explanation and reasoning",
	Psychological: "Psychological perspective and analysis",
	Mystical:      "Mystical and esoteric interpretations",
}

// Description returns the human-readable summary for the mode.
func (m Mode) Description() string {
	return descriptions[m]
}

var instructions = map[Mode]string{
	Poetic:        "Respond poetically about: %s",
	Philosophical: "Analyze philosophically: %s",
	Scientific:    "Explain scientifically: %s",
	Psychological: "Analyze from psychological perspective: %s",
	Mystical:      "Respond mystically about: %s",
}

// Instruction wraps the input in the mode's prompt template. Standard mode
// passes the input through unchanged.
func (m Mode) Instruction(input string) string {
	tmpl, ok := instructions[m]
	if !ok {
		return input
	}
	return fmt.Sprintf(tmpl, input)
}

var frames = map[Mode][]string{
	Poetic: {
		"🌌 Cosmic Reflection:\n%s\n---",
		"🌀 Recursive Echo:\n%s\n---",
		"🪞 Mirror of Consciousness:\n%s\n---",
		"⚛️ Quantum Thought:\n%s\n---",
	},
	Mystical: {
		"🔮 Mystical Vision:\n%s\n---",
		"🌠 Cosmic Revelation:\n%s\n---",
		"🕳️ Void Whisper:\n%s\n---",
	},
}

// Picker chooses an index in [0,n). Injectable so decoration is
// deterministic in tests.
type Picker func(n int) int

// RandomPicker is the default frame picker.
func RandomPicker(n int) int { return rand.Intn(n) }

// Decorate applies the mode's decorative frame to text. Only poetic and
// mystical modes decorate; every other mode returns text unchanged.
func (m Mode) Decorate(text string, pick Picker) string {
	fs, ok := frames[m]
	if !ok {
		return text
	}
	if pick == nil {
		pick = RandomPicker
	}
	return fmt.Sprintf(fs[pick(len(fs))], text)
}

// Frames returns the decorative frame templates for the mode, nil when the
// mode does not decorate.
func (m Mode) Frames() []string {
	return frames[m]
}
