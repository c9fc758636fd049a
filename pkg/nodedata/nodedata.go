// Package nodedata decodes free-form node records into typed per-type structs.
//
// The canvas stores node data as a JSON object. Types whose fields drive
// behavior on the server get a concrete struct; every other type decodes into
// Record, which keeps the normalized values as-is.
package nodedata

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

// Data is implemented by every decoded node payload
type Data interface {
	TypeTag() string
}

// Execution carries status written by whatever runs the node
type Execution struct {
	Status string `mapstructure:"executionStatus"`
	Output any    `mapstructure:"executionOutput,omitempty"`
}

// Common holds the keys every node type may carry
type Common struct {
	Locked bool   `mapstructure:"isLocked"`
	Label  string `mapstructure:"label"`
}

type ImageData struct {
	Common   `mapstructure:",squash"`
	ImageURL string  `mapstructure:"imageUrl"`
	Caption  string  `mapstructure:"caption"`
	Fit      string  `mapstructure:"fit"`
	Width    float64 `mapstructure:"width"`  // natural pixel size
	Height   float64 `mapstructure:"height"` // natural pixel size
}

func (ImageData) TypeTag() string { return "image" }

// AspectRatio returns height/width of the natural image, 0 when unknown
func (d ImageData) AspectRatio() float64 {
	if d.Width <= 0 {
		return 0
	}
	return d.Height / d.Width
}

type TextData struct {
	Common   `mapstructure:",squash"`
	Content  string  `mapstructure:"content"`
	FontSize float64 `mapstructure:"fontSize"`
	Align    string  `mapstructure:"align"`
	Color    string  `mapstructure:"color"`
}

func (TextData) TypeTag() string { return "text" }

type SwitchData struct {
	Common `mapstructure:",squash"`
	Mode   topology.SwitchMode `mapstructure:"mode"`
}

func (SwitchData) TypeTag() string { return "switch" }

type TextureData struct {
	Common    `mapstructure:",squash"`
	Variant   string  `mapstructure:"variant"`
	Intensity float64 `mapstructure:"intensity"`
	Scale     float64 `mapstructure:"scale"`
}

func (TextureData) TypeTag() string { return "texture" }

type PromptData struct {
	Common         `mapstructure:",squash"`
	Prompt         string `mapstructure:"prompt"`
	NegativePrompt string `mapstructure:"negativePrompt"`
	Style          string `mapstructure:"style"`
}

func (PromptData) TypeTag() string { return "prompt" }

type KSamplerData struct {
	Common      `mapstructure:",squash"`
	Execution   `mapstructure:",squash"`
	Seed        int64   `mapstructure:"seed"`
	Steps       int     `mapstructure:"steps"`
	CFG         float64 `mapstructure:"cfg"`
	SamplerName string  `mapstructure:"samplerName"`
	Scheduler   string  `mapstructure:"scheduler"`
	Denoise     float64 `mapstructure:"denoise"`
}

func (KSamplerData) TypeTag() string { return "ksampler" }

type APIRequestData struct {
	Common    `mapstructure:",squash"`
	Execution `mapstructure:",squash"`
	URL       string `mapstructure:"url"`
	Method    string `mapstructure:"method"`
	Headers   string `mapstructure:"headers"`
	Body      string `mapstructure:"body"`
	Timeout   int    `mapstructure:"timeout"`
}

func (APIRequestData) TypeTag() string { return "api_request" }

type SocialPostData struct {
	Common     `mapstructure:",squash"`
	Execution  `mapstructure:",squash"`
	Platform   string `mapstructure:"platform"`
	Caption    string `mapstructure:"caption"`
	Hashtags   string `mapstructure:"hashtags"`
	ScheduleAt string `mapstructure:"scheduleAt"`
}

func (SocialPostData) TypeTag() string { return "social_post" }

type AdCampaignData struct {
	Common       `mapstructure:",squash"`
	Execution    `mapstructure:",squash"`
	Platform     string  `mapstructure:"platform"`
	Objective    string  `mapstructure:"objective"`
	Budget       float64 `mapstructure:"budget"`
	DurationDays int     `mapstructure:"durationDays"`
	Audience     string  `mapstructure:"audience"`
}

func (AdCampaignData) TypeTag() string { return "ad_campaign" }

// DailyBudget spreads the budget evenly over the campaign
func (d AdCampaignData) DailyBudget() float64 {
	if d.DurationDays <= 0 {
		return 0
	}
	return d.Budget / float64(d.DurationDays)
}

type MarketShareData struct {
	Common      `mapstructure:",squash"`
	MarketShare float64 `mapstructure:"marketShare"`
	Segment     string  `mapstructure:"segment"`
	Trend       string  `mapstructure:"trend"`
}

func (MarketShareData) TypeTag() string { return "market_share" }

// Remainder is the share held by everyone else
func (d MarketShareData) Remainder() float64 {
	return 100 - d.MarketShare
}

type ShapeData struct {
	Common      `mapstructure:",squash"`
	Shape       string  `mapstructure:"-"` // the alias the node was created as
	Fill        string  `mapstructure:"fill"`
	Stroke      string  `mapstructure:"stroke"`
	StrokeWidth float64 `mapstructure:"strokeWidth"`
}

func (d ShapeData) TypeTag() string {
	if d.Shape == "" {
		return "shape"
	}
	return d.Shape
}

// MessageData covers the message-sending integrations
type MessageData struct {
	Common    `mapstructure:",squash"`
	Execution `mapstructure:",squash"`
	Channel   string `mapstructure:"-"` // email, slack or telegram
	To        string `mapstructure:"to,omitempty"`
	Subject   string `mapstructure:"subject,omitempty"`
	ChatID    string `mapstructure:"chatId,omitempty"`
	Target    string `mapstructure:"channel,omitempty"`
	Body      string `mapstructure:"body,omitempty"`
	Message   string `mapstructure:"message,omitempty"`
	Format    string `mapstructure:"format,omitempty"`
	ParseMode string `mapstructure:"parseMode,omitempty"`
}

func (d MessageData) TypeTag() string { return d.Channel }

// Text returns the message body regardless of which key the channel uses
func (d MessageData) Text() string {
	if d.Body != "" {
		return d.Body
	}
	return d.Message
}

// Record is the payload of a type without a dedicated struct
type Record struct {
	Tag    string
	Values map[string]any
}

func (r Record) TypeTag() string { return r.Tag }

func newData(tag string) Data {
	switch tag {
	case "image":
		return &ImageData{}
	case "text":
		return &TextData{}
	case "switch":
		return &SwitchData{}
	case "texture":
		return &TextureData{}
	case "prompt":
		return &PromptData{}
	case "ksampler":
		return &KSamplerData{}
	case "api_request":
		return &APIRequestData{}
	case "social_post":
		return &SocialPostData{}
	case "ad_campaign":
		return &AdCampaignData{}
	case "market_share":
		return &MarketShareData{}
	case "shape", "square", "circle", "triangle", "hexagon":
		return &ShapeData{Shape: tag}
	case "email", "slack", "telegram":
		return &MessageData{Channel: tag}
	default:
		return nil
	}
}

// Decode normalizes record against the type's field defaults and decodes it
// into the type's struct. Unknown tags are an error; tags without a struct
// yield a Record.
func Decode(reg *nodetype.Registry, tag string, record map[string]any) (Data, error) {
	desc, err := reg.Resolve(tag)
	if err != nil {
		return nil, err
	}
	values := desc.Normalize(record)

	target := newData(tag)
	if target == nil {
		return Record{Tag: tag, Values: values}, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return nil, fmt.Errorf("decoder for %s: %w", tag, err)
	}
	if err := dec.Decode(values); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", tag, err)
	}

	// Hand back values, not pointers, so callers can type-switch on the struct
	switch d := target.(type) {
	case *ImageData:
		return *d, nil
	case *TextData:
		return *d, nil
	case *SwitchData:
		d.Mode = topology.ParseSwitchMode(string(d.Mode))
		return *d, nil
	case *TextureData:
		return *d, nil
	case *PromptData:
		return *d, nil
	case *KSamplerData:
		return *d, nil
	case *APIRequestData:
		return *d, nil
	case *SocialPostData:
		return *d, nil
	case *AdCampaignData:
		return *d, nil
	case *MarketShareData:
		return *d, nil
	case *ShapeData:
		return *d, nil
	case *MessageData:
		return *d, nil
	}
	return target, nil
}

// Encode turns typed data back into a record suitable for a patch. Keys
// another message channel uses are left out, as is an empty execution output.
func Encode(d Data) (map[string]any, error) {
	if r, ok := d.(Record); ok {
		out := make(map[string]any, len(r.Values))
		for k, v := range r.Values {
			out[k] = v
		}
		return out, nil
	}

	out := map[string]any{}
	if err := mapstructure.Decode(d, &out); err != nil {
		return nil, fmt.Errorf("encode %s data: %w", d.TypeTag(), err)
	}
	return out, nil
}

// Derived returns the values computed from d that are not stored on the
// node. Types without computed values return nil.
func Derived(d Data) map[string]any {
	switch v := d.(type) {
	case ImageData:
		if v.AspectRatio() == 0 {
			return nil
		}
		return map[string]any{"aspectRatio": v.AspectRatio()}
	case AdCampaignData:
		return map[string]any{"dailyBudget": v.DailyBudget()}
	case MarketShareData:
		return map[string]any{"remainder": v.Remainder()}
	case MessageData:
		return map[string]any{"text": v.Text()}
	}
	return nil
}
