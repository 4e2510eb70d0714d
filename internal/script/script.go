package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Request carries everything a provider needs to write one content item.
type Request struct {
	ChannelName    string
	TopicMode      string
	Topics         []string
	Styles         []string
	UsedTopics     []string
	TargetDuration int
	UniqueID       string
}

// SceneSpec is one scene of the generated breakdown.
type SceneSpec struct {
	SceneNumber       int     `json:"scene_number"`
	StartSeconds      float64 `json:"start_time_seconds"`
	EndSeconds        float64 `json:"end_time_seconds"`
	VisualDescription string  `json:"visual_description"`
	NarrationText     string  `json:"narration_text"`
}

// Content is a fully generated item: title, narration script and the
// per-scene breakdown.
type Content struct {
	Title           string      `json:"title"`
	Script          string      `json:"script"`
	DurationSeconds float64     `json:"duration_seconds"`
	TopicKeywords   []string    `json:"topic_keywords"`
	Scenes          []SceneSpec `json:"scenes"`
}

// Provider generates content from a structured request. Each provider
// builds its own prompt from the request and parses its own response.
type Provider interface {
	Name() string
	GenerateContent(ctx context.Context, req Request) (*Content, error)
}

const (
	minScenes = 1
	maxScenes = 8

	// Small float tolerance when checking that scenes tile the duration.
	timingEpsilon = 0.05
)

// Validate checks that a provider response is structurally complete:
// title, script, a plausible scene count, and scenes that tile the
// duration contiguously. Minor timing drift within the epsilon is
// accepted; anything else sends the gateway to the next provider.
func Validate(c *Content) error {
	if c == nil {
		return fmt.Errorf("empty response")
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("missing title")
	}
	if strings.TrimSpace(c.Script) == "" {
		return fmt.Errorf("missing script")
	}
	if len(c.Scenes) < minScenes || len(c.Scenes) > maxScenes {
		return fmt.Errorf("got %d scenes, want between %d and %d", len(c.Scenes), minScenes, maxScenes)
	}

	prevEnd := 0.0
	for i, scene := range c.Scenes {
		if strings.TrimSpace(scene.VisualDescription) == "" {
			return fmt.Errorf("scene %d: missing visual description", i+1)
		}
		if strings.TrimSpace(scene.NarrationText) == "" {
			return fmt.Errorf("scene %d: missing narration", i+1)
		}
		if scene.EndSeconds <= scene.StartSeconds {
			return fmt.Errorf("scene %d: end %.2f not after start %.2f", i+1, scene.EndSeconds, scene.StartSeconds)
		}
		if diff := scene.StartSeconds - prevEnd; diff > timingEpsilon || diff < -timingEpsilon {
			return fmt.Errorf("scene %d: starts at %.2f, previous scene ends at %.2f", i+1, scene.StartSeconds, prevEnd)
		}
		// The end must clear the previous scene's end, not just the raw
		// start: Normalize snaps starts to the previous end, and an end
		// inside the epsilon window would leave the scene with negative
		// length after the snap.
		if scene.EndSeconds <= prevEnd {
			return fmt.Errorf("scene %d: ends at %.2f, not past previous end %.2f", i+1, scene.EndSeconds, prevEnd)
		}
		prevEnd = scene.EndSeconds
	}
	return nil
}

// Normalize renumbers scenes 1..n, snaps starts to the previous end and
// derives the item duration from the last scene. Providers drift on
// exact numbers; the stored rows must not.
func Normalize(c *Content) {
	prevEnd := 0.0
	for i := range c.Scenes {
		c.Scenes[i].SceneNumber = i + 1
		c.Scenes[i].StartSeconds = prevEnd
		prevEnd = c.Scenes[i].EndSeconds
	}
	c.DurationSeconds = prevEnd
}

// BuildPrompt renders the natural-language instruction shared by all
// providers. The timing policy lives here, in the prompt contract.
func BuildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a short-form video for the channel %q.\n", req.ChannelName)
	fmt.Fprintf(&b, "Target duration: exactly %d seconds of narration at 150-180 words per minute.\n", req.TargetDuration)

	switch req.TopicMode {
	case "fixed":
		fmt.Fprintf(&b, "Pick one topic from this list: %s.\n", strings.Join(req.Topics, ", "))
	default:
		if len(req.Topics) > 0 {
			fmt.Fprintf(&b, "Stay within these subject areas: %s.\n", strings.Join(req.Topics, ", "))
		}
	}
	if len(req.Styles) > 0 {
		fmt.Fprintf(&b, "Visual style: %s.\n", strings.Join(req.Styles, ", "))
	}
	if len(req.UsedTopics) > 0 {
		fmt.Fprintf(&b, "Do not repeat any of these already covered topics: %s.\n", strings.Join(req.UsedTopics, ", "))
	}

	b.WriteString("Break the video into 3-5 scenes of 6-12 seconds each. ")
	b.WriteString("Scene times must be contiguous, start at 0 and sum exactly to the target duration. ")
	b.WriteString("The narration_text fields, concatenated in order, must reproduce the script verbatim.\n")
	b.WriteString(`Respond with JSON only: {"title": string, "script": string, "duration_seconds": number, "topic_keywords": [string], "scenes": [{"scene_number": number, "start_time_seconds": number, "end_time_seconds": number, "visual_description": string, "narration_text": string}]}`)
	b.WriteString("\nGeneration id: " + req.UniqueID + "\n")

	return b.String()
}

// SystemPrompt is shared by all script providers.
const SystemPrompt = "You are a scriptwriter for short-form vertical video. You write tight, high-retention narration and concrete visual directions, and you respond with valid JSON only."

// ParseContent decodes a provider's raw text response, tolerating
// markdown code fences around the JSON body.
func ParseContent(raw string) (*Content, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var content Content
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	return &content, nil
}
