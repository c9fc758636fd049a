package nodetype

import (
	"fmt"
	"slices"
	"sync"

	f "github.com/ritzau/brandos-canvas/pkg/fields"
	t "github.com/ritzau/brandos-canvas/pkg/topology"
)

// ShapeAliases share the shape descriptor
var ShapeAliases = []string{"square", "circle", "triangle", "hexagon"}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the sealed registry of every node type the canvas knows
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r := NewRegistry()
		for _, d := range catalog() {
			mustRegister(r.Register(d.TypeTag, d))
		}
		for _, alias := range ShapeAliases {
			mustRegister(r.Alias(alias, "shape"))
		}
		r.Seal()
		builtin = r
	})
	return builtin
}

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("builtin node catalog: %v", err))
	}
}

var (
	sizeSmall  = f.Size{Width: 160, Height: 80}
	sizeCard   = f.Size{Width: 220, Height: 120}
	sizeMedium = f.Size{Width: 260, Height: 180}
	sizeLarge  = f.Size{Width: 300, Height: 240}
)

func node(tag, title, icon string, cat Category, min f.Size, specs ...f.Spec) Descriptor {
	return Descriptor{
		TypeTag:      tag,
		DisplayTitle: title,
		Icon:         icon,
		Accent:       accentFor(cat),
		Category:     cat,
		MinSize:      min,
		Topology:     t.Generic(),
		Fields:       specs,
		Resizable:    true,
	}
}

func accentFor(c Category) string {
	switch c {
	case CategoryShape:
		return "sky"
	case CategoryAI:
		return "violet"
	case CategoryIntegration:
		return "emerald"
	case CategoryLogic:
		return "amber"
	case CategoryStrategy:
		return "rose"
	default:
		return "slate"
	}
}

func (d Descriptor) with(topo t.Topology) Descriptor {
	d.Topology = topo
	return d
}

func (d Descriptor) headerless() Descriptor {
	d.Headerless = true
	return d
}

func (d Descriptor) executable() Descriptor {
	d.Executable = true
	return d.data("executionStatus", "executionOutput")
}

func (d Descriptor) data(keys ...string) Descriptor {
	d.DataKeys = append(slices.Clone(d.DataKeys), keys...)
	return d
}

func (d Descriptor) fixedSize() Descriptor {
	d.Resizable = false
	return d
}

func imageIO(in, out string) t.Fixed {
	return t.Join(
		t.Column(t.SideLeft, t.Input, t.Port{ID: in, Color: t.ColorImage}),
		t.Column(t.SideRight, t.Output, t.Port{ID: out, Color: t.ColorImage}),
	)
}

func catalog() []Descriptor {
	return []Descriptor{
		// Content
		node("image", "Image", "image", CategoryContent, f.Size{Width: 200, Height: 150},
			f.Text("imageUrl", "Image URL", "https://"),
			f.Text("caption", "Caption", "Add a caption"),
			f.Enum("fit", "Fit", "", "cover", "contain", "fill"),
		).data("width", "height"),
		node("text", "Text", "type", CategoryContent, sizeCard,
			f.Multiline("content", "Text", "Start typing"),
			f.Range("fontSize", "Font size", 8, 96, 1, 16),
			f.Enum("align", "Alignment", "", "left", "center", "right"),
			f.Swatch("color", "Color", "#111827"),
		),
		node("note", "Note", "notebook-pen", CategoryContent, sizeCard,
			f.Multiline("content", "Note", "Write a note"),
			f.Enum("priority", "Priority", "medium", "low", "medium", "high"),
		),
		node("sticky", "Sticky", "sticky-note", CategoryContent, f.Size{Width: 160, Height: 160},
			f.Multiline("content", "Text", ""),
			f.Swatch("color", "Color", "#FDE68A"),
		).headerless(),
		node("video", "Video", "video", CategoryContent, sizeMedium,
			f.Text("videoUrl", "Video URL", "https://"),
			f.Toggle("autoplay", "Autoplay", false),
			f.Toggle("loop", "Loop", false),
		),
		node("audio", "Audio", "audio-lines", CategoryContent, sizeCard,
			f.Text("audioUrl", "Audio URL", "https://"),
			f.Range("volume", "Volume", 0, 100, 1, 80),
		),
		node("link", "Link", "link", CategoryContent, sizeCard,
			f.Text("url", "URL", "https://"),
			f.Text("title", "Title", ""),
		),
		node("document", "Document", "file-text", CategoryContent, sizeLarge,
			f.Text("title", "Title", "Untitled"),
			f.Multiline("body", "Body", ""),
			f.Enum("format", "Format", "", "markdown", "plain", "html"),
		),
		node("quote", "Quote", "quote", CategoryContent, sizeCard,
			f.Multiline("quote", "Quote", ""),
			f.Text("author", "Author", ""),
		),
		node("table", "Table", "table", CategoryContent, sizeLarge,
			f.Range("columns", "Columns", 1, 12, 1, 3),
			f.Range("rows", "Rows", 1, 50, 1, 5),
			f.Toggle("header", "Header row", true),
		),
		node("embed", "Embed", "code-xml", CategoryContent, sizeMedium,
			f.Text("embedUrl", "Embed URL", "https://"),
			f.Enum("provider", "Provider", "generic", "youtube", "figma", "vimeo", "generic"),
		),
		node("frame", "Frame", "frame", CategoryContent, f.Size{Width: 300, Height: 200},
			f.Text("label", "Label", "Frame"),
			f.Swatch("background", "Background", "#FFFFFF"),
			f.Toggle("clip", "Clip content", true),
		),
		node("color", "Color", "palette", CategoryContent, sizeSmall,
			f.Swatch("hex", "Color", "#6366F1"),
			f.Text("name", "Name", ""),
		).fixedSize(),
		node("palette", "Palette", "swatch-book", CategoryContent, sizeCard,
			f.Swatch("primary", "Primary", "#6366F1"),
			f.Swatch("secondary", "Secondary", "#EC4899"),
			f.Swatch("accent", "Accent", "#F59E0B"),
			f.Enum("harmony", "Harmony", "", "complementary", "analogous", "triadic", "monochrome"),
		),
		node("typography", "Typography", "case-sensitive", CategoryContent, sizeCard,
			f.Enum("fontFamily", "Font", "", "Inter", "Playfair Display", "Roboto Mono", "Montserrat"),
			f.Enum("weight", "Weight", "", "400", "500", "600", "700"),
			f.Text("sampleText", "Sample", "The quick brown fox"),
		),
		node("logo", "Logo", "badge", CategoryContent, f.Size{Width: 160, Height: 160},
			f.Text("logoUrl", "Logo URL", "https://"),
			f.Enum("variant", "Variant", "", "primary", "secondary", "mark", "wordmark"),
		),
		node("texture", "Texture", "layers", CategoryContent, sizeCard,
			f.Enum("variant", "Variant", "", "noise", "paper", "grain", "linen", "concrete"),
			f.Range("intensity", "Intensity", 0, 100, 1, 50),
			f.Range("scale", "Scale", 0.1, 4, 0.1, 1),
		),
		node("gradient", "Gradient", "blend", CategoryContent, sizeCard,
			f.Swatch("from", "From", "#6366F1"),
			f.Swatch("to", "To", "#EC4899"),
			f.Range("angle", "Angle", 0, 360, 1, 90),
			f.Enum("kind", "Kind", "", "linear", "radial"),
		),
		node("moodboard", "Moodboard", "layout-grid", CategoryContent, sizeLarge,
			f.Text("title", "Title", "Untitled board"),
			f.Multiline("description", "Description", ""),
			f.Enum("mood", "Mood", "minimal", "bold", "calm", "playful", "luxurious", "minimal"),
		),

		// Shapes; square, circle, triangle and hexagon alias this descriptor
		node("shape", "Shape", "shapes", CategoryShape, f.Size{Width: 80, Height: 80},
			f.Swatch("fill", "Fill", "#E0E7FF"),
			f.Swatch("stroke", "Stroke", "#4F46E5"),
			f.Range("strokeWidth", "Stroke width", 0, 20, 1, 2),
			f.Text("label", "Label", ""),
		).headerless(),

		// AI generation
		node("prompt", "Prompt", "sparkles", CategoryAI, sizeMedium,
			f.Multiline("prompt", "Prompt", "Describe what to generate"),
			f.Multiline("negativePrompt", "Negative prompt", ""),
			f.Enum("style", "Style", "", "photographic", "illustration", "3d", "flat"),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input, t.Port{ID: "context_input", Color: t.ColorText}),
			t.Column(t.SideRight, t.Output, t.Port{ID: "text_output", Color: t.ColorText}),
		)),
		node("checkpoint_loader", "Load Checkpoint", "database", CategoryAI, sizeMedium,
			f.Enum("ckptName", "Checkpoint", "", "sdxl_base_1.0", "sd_1.5", "flux_dev"),
		).with(t.Column(t.SideRight, t.Output,
			t.Port{ID: "model_output", Color: t.ColorModel},
			t.Port{ID: "clip_output", Color: t.ColorClip},
			t.Port{ID: "vae_output", Color: t.ColorVAE},
		)),
		node("ksampler", "KSampler", "cpu", CategoryAI, f.Size{Width: 280, Height: 260},
			f.Range("seed", "Seed", 0, 4294967295, 1, 0),
			f.Range("steps", "Steps", 1, 150, 1, 20),
			f.Range("cfg", "CFG", 1, 30, 0.5, 7),
			f.Enum("samplerName", "Sampler", "", "euler", "euler_ancestral", "dpmpp_2m", "ddim"),
			f.Enum("scheduler", "Scheduler", "", "normal", "karras", "exponential"),
			f.Range("denoise", "Denoise", 0, 1, 0.01, 1),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input,
				t.Port{ID: "model", Color: t.ColorModel},
				t.Port{ID: "positive", Color: t.ColorConditioning},
				t.Port{ID: "negative", Color: t.ColorConditioning},
				t.Port{ID: "latent_image", Color: t.ColorLatent},
			),
			t.Column(t.SideRight, t.Output, t.Port{ID: "latent", Color: t.ColorLatent}),
		)).executable(),
		node("clip_text_encode", "CLIP Text Encode", "text-cursor-input", CategoryAI, sizeMedium,
			f.Multiline("text", "Text", "Prompt"),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input, t.Port{ID: "clip", Color: t.ColorClip}),
			t.Column(t.SideRight, t.Output, t.Port{ID: "conditioning", Color: t.ColorConditioning}),
		)),
		node("vae_decode", "VAE Decode", "scan", CategoryAI, sizeSmall).with(t.Join(
			t.Column(t.SideLeft, t.Input,
				t.Port{ID: "samples", Color: t.ColorLatent},
				t.Port{ID: "vae", Color: t.ColorVAE},
			),
			t.Column(t.SideRight, t.Output, t.Port{ID: "image", Color: t.ColorImage}),
		)),
		node("lora_loader", "Load LoRA", "package-plus", CategoryAI, sizeMedium,
			f.Text("loraName", "LoRA", "brand_style.safetensors"),
			f.Range("strengthModel", "Model strength", 0, 2, 0.05, 1),
			f.Range("strengthClip", "CLIP strength", 0, 2, 0.05, 1),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input,
				t.Port{ID: "model", Color: t.ColorModel},
				t.Port{ID: "clip", Color: t.ColorClip},
			),
			t.Column(t.SideRight, t.Output,
				t.Port{ID: "model_output", Color: t.ColorModel},
				t.Port{ID: "clip_output", Color: t.ColorClip},
			),
		)),
		node("image_generation", "Image Generation", "wand-sparkles", CategoryAI, sizeLarge,
			f.Multiline("prompt", "Prompt", "A product shot on a marble table"),
			f.Enum("model", "Model", "", "dall-e-3", "sdxl", "flux-pro", "midjourney"),
			f.Enum("aspectRatio", "Aspect ratio", "", "1:1", "16:9", "9:16", "4:3"),
			f.Range("count", "Images", 1, 4, 1, 1),
		).executable(),
		node("text_generation", "Text Generation", "message-square-text", CategoryAI, sizeLarge,
			f.Multiline("prompt", "Prompt", "Write a tagline for"),
			f.Enum("model", "Model", "", "gpt-4o", "claude-3-5-sonnet", "gemini-1.5-pro"),
			f.Range("temperature", "Temperature", 0, 2, 0.1, 0.7),
			f.Range("maxTokens", "Max tokens", 64, 4096, 64, 512),
		).executable(),
		node("upscale", "Upscale", "maximize", CategoryAI, sizeCard,
			f.Enum("factor", "Factor", "", "2x", "4x"),
			f.Enum("model", "Model", "", "real-esrgan", "swinir"),
		).with(imageIO("image_input", "image_output")).executable(),
		node("background_removal", "Remove Background", "eraser", CategoryAI, sizeCard,
			f.Enum("model", "Model", "", "u2net", "isnet"),
			f.Range("feather", "Feather", 0, 20, 1, 0),
		).with(imageIO("image_input", "image_output")).executable(),
		node("style_transfer", "Style Transfer", "brush", CategoryAI, sizeMedium,
			f.Enum("style", "Style", "", "watercolor", "oil", "sketch", "pop-art"),
			f.Range("strength", "Strength", 0, 1, 0.05, 0.6),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input,
				t.Port{ID: "content_image", Color: t.ColorImage},
				t.Port{ID: "style_image", Color: t.ColorImage},
			),
			t.Column(t.SideRight, t.Output, t.Port{ID: "image_output", Color: t.ColorImage}),
		)).executable(),

		// Integrations
		node("api_request", "API Request", "globe", CategoryIntegration, sizeLarge,
			f.Text("url", "URL", "https://api.example.com"),
			f.Enum("method", "Method", "", "GET", "POST", "PUT", "PATCH", "DELETE"),
			f.Multiline("headers", "Headers", "Content-Type: application/json"),
			f.Multiline("body", "Body", "{}"),
			f.Range("timeout", "Timeout (s)", 1, 120, 1, 30),
		).executable(),
		node("webhook", "Webhook", "webhook", CategoryIntegration, sizeMedium,
			f.Text("endpoint", "Endpoint", "/hooks/brand"),
			f.Text("secret", "Secret", ""),
			f.Enum("method", "Method", "", "POST", "GET"),
			f.Toggle("active", "Active", true),
		).executable(),
		node("email", "Email", "mail", CategoryIntegration, sizeLarge,
			f.Text("to", "To", "team@example.com"),
			f.Text("subject", "Subject", ""),
			f.Multiline("body", "Body", ""),
			f.Enum("format", "Format", "", "html", "plain"),
		).executable(),
		node("slack", "Slack", "slack", CategoryIntegration, sizeMedium,
			f.Text("channel", "Channel", "#marketing"),
			f.Multiline("message", "Message", ""),
			f.Toggle("mentionChannel", "Mention @channel", false),
		).executable(),
		node("telegram", "Telegram", "send", CategoryIntegration, sizeMedium,
			f.Text("chatId", "Chat ID", ""),
			f.Multiline("message", "Message", ""),
			f.Enum("parseMode", "Parse mode", "", "Markdown", "HTML", "plain"),
		).executable(),
		node("social_post", "Social Post", "share-2", CategoryIntegration, sizeLarge,
			f.Enum("platform", "Platform", "", "instagram", "linkedin", "x", "facebook", "tiktok"),
			f.Multiline("caption", "Caption", ""),
			f.Text("hashtags", "Hashtags", "#brand"),
			f.Text("scheduleAt", "Schedule", "YYYY-MM-DDTHH:MM"),
		).executable(),
		node("ad_campaign", "Ad Campaign", "megaphone", CategoryIntegration, sizeLarge,
			f.Enum("platform", "Platform", "", "meta", "google", "linkedin", "tiktok"),
			f.Enum("objective", "Objective", "", "awareness", "traffic", "engagement", "leads", "sales"),
			f.Range("budget", "Budget", 0, 100000, 10, 1000),
			f.Range("durationDays", "Duration (days)", 1, 90, 1, 14),
			f.Multiline("audience", "Audience", ""),
		).executable(),
		node("analytics", "Analytics", "chart-line", CategoryIntegration, sizeMedium,
			f.Enum("source", "Source", "", "google_analytics", "meta_insights", "linkedin"),
			f.Enum("metric", "Metric", "", "impressions", "clicks", "ctr", "conversions"),
			f.Enum("period", "Period", "30d", "7d", "30d", "90d"),
		).executable(),
		node("rss_feed", "RSS Feed", "rss", CategoryIntegration, sizeCard,
			f.Text("feedUrl", "Feed URL", "https://"),
			f.Range("maxItems", "Max items", 1, 50, 1, 10),
		).executable(),
		node("scheduler", "Scheduler", "calendar-clock", CategoryIntegration, sizeCard,
			f.Text("cron", "Cron", "0 9 * * 1"),
			f.Enum("timezone", "Timezone", "", "UTC", "Europe/Stockholm", "America/New_York", "Asia/Tokyo"),
			f.Toggle("enabled", "Enabled", true),
		).with(t.Column(t.SideRight, t.Output, t.Port{ID: "tick", Color: t.ColorSignal})),

		// Flow logic
		node("switch", "Switch", "split", CategoryLogic, f.Size{Width: 200, Height: 320},
			f.Enum("mode", "Mode", string(t.DefaultSwitchMode),
				string(t.ModeAggregator), string(t.ModeBroadcaster), string(t.ModeMatrix)),
			f.Text("label", "Label", ""),
		).with(t.SwitchTopology{}),
		node("condition", "Condition", "git-branch", CategoryLogic, sizeMedium,
			f.Text("expression", "Field", "data.status"),
			f.Enum("operator", "Operator", "", "equals", "contains", "greater_than", "less_than"),
			f.Text("value", "Value", ""),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input, t.Port{ID: "in", Color: t.ColorData}),
			t.Column(t.SideRight, t.Output,
				t.Port{ID: "true", Color: t.ColorSignal},
				t.Port{ID: "false", Color: t.ColorSignal},
			),
		)),
		node("delay", "Delay", "timer", CategoryLogic, sizeCard,
			f.Range("duration", "Duration", 0, 3600, 1, 5),
			f.Enum("unit", "Unit", "", "seconds", "minutes", "hours"),
		),
		node("merge", "Merge", "merge", CategoryLogic, sizeCard,
			f.Enum("strategy", "Strategy", "", "concat", "zip", "first"),
		).with(t.Join(
			t.Column(t.SideLeft, t.Input,
				t.Port{ID: "input_a", Color: t.ColorData},
				t.Port{ID: "input_b", Color: t.ColorData},
				t.Port{ID: "input_c", Color: t.ColorData},
			),
			t.Column(t.SideRight, t.Output, t.Port{ID: "merged", Color: t.ColorData}),
		)),
		node("loop", "Loop", "repeat", CategoryLogic, sizeCard,
			f.Range("iterations", "Iterations", 1, 100, 1, 5),
			f.Toggle("parallel", "Parallel", false),
		),
		node("variable", "Variable", "variable", CategoryLogic, sizeCard,
			f.Text("name", "Name", "brandName"),
			f.Text("value", "Value", ""),
			f.Enum("scope", "Scope", "", "board", "session"),
		),
		node("code", "Code", "braces", CategoryLogic, sizeLarge,
			f.Enum("language", "Language", "", "javascript", "python"),
			f.Multiline("source", "Source", "return input;"),
		).executable(),
		node("json_transform", "JSON Transform", "file-json", CategoryLogic, sizeMedium,
			f.Multiline("expression", "Expression", "$.items[*].name"),
		),

		// Brand strategy
		node("persona", "Persona", "user-round", CategoryStrategy, sizeLarge,
			f.Text("name", "Name", ""),
			f.Range("age", "Age", 18, 80, 1, 30),
			f.Text("occupation", "Occupation", ""),
			f.Multiline("goals", "Goals", ""),
			f.Multiline("painPoints", "Pain points", ""),
		),
		node("competitor", "Competitor", "swords", CategoryStrategy, sizeMedium,
			f.Text("name", "Name", ""),
			f.Text("website", "Website", "https://"),
			f.Multiline("positioning", "Positioning", ""),
			f.Enum("threat", "Threat", "medium", "low", "medium", "high"),
		),
		node("market_share", "Market Share", "chart-pie", CategoryStrategy, sizeMedium,
			f.Range("marketShare", "Share (%)", 0, 100, 1, 20),
			f.Text("segment", "Segment", ""),
			f.Enum("trend", "Trend", "stable", "growing", "stable", "declining"),
		),
		node("swot", "SWOT", "grid-2x2", CategoryStrategy, f.Size{Width: 360, Height: 280},
			f.Multiline("strengths", "Strengths", ""),
			f.Multiline("weaknesses", "Weaknesses", ""),
			f.Multiline("opportunities", "Opportunities", ""),
			f.Multiline("threats", "Threats", ""),
		),
		node("brand_voice", "Brand Voice", "mic", CategoryStrategy, sizeMedium,
			f.Enum("tone", "Tone", "", "friendly", "authoritative", "playful", "inspirational", "professional"),
			f.Range("formality", "Formality", 1, 10, 1, 5),
			f.Text("keywords", "Keywords", ""),
		),
		node("goal", "Goal", "target", CategoryStrategy, sizeCard,
			f.Text("title", "Goal", ""),
			f.Text("metric", "Metric", ""),
			f.Range("target", "Target", 0, 1000000, 1, 100),
			f.Text("deadline", "Deadline", "YYYY-MM-DD"),
		),
		node("budget", "Budget", "wallet", CategoryStrategy, sizeCard,
			f.Range("total", "Total", 0, 1000000, 100, 10000),
			f.Enum("currency", "Currency", "", "USD", "EUR", "SEK", "GBP"),
		),
		node("timeline", "Timeline", "calendar-range", CategoryStrategy, sizeLarge,
			f.Multiline("milestones", "Milestones", ""),
			f.Range("steps", "Steps", 1, 20, 1, 5),
			f.Text("startDate", "Start", "YYYY-MM-DD"),
		),
	}
}
