package schema

// PageImage is one uploaded page of a chapter. Name is an opaque identifier assigned by the
// upload layer and carries no ordering information. Data is an embeddable image reference,
// either a data URI or an http(s) URL.
type PageImage struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type PageType string

const (
	PageOpening PageType = "opening"
	PageContent PageType = "content"
	PageClosing PageType = "closing"
)

type DialogueKind string

const (
	DialogueQuestion    DialogueKind = "question"
	DialogueAnswer      DialogueKind = "answer"
	DialogueExclamation DialogueKind = "exclamation"
	DialogueThought     DialogueKind = "thought"
	DialogueNarration   DialogueKind = "narration"
)

type DialoguePosition string

const (
	PositionTop    DialoguePosition = "top"
	PositionMiddle DialoguePosition = "middle"
	PositionBottom DialoguePosition = "bottom"
)

// PageAnalysis is the description the visual analyzer produces for a single page.
type PageAnalysis struct {
	Filename      string   `json:"filename" jsonschema_description:"The exact filename supplied with the image, copied verbatim"`
	PageType      PageType `json:"pageType" jsonschema:"enum=opening,enum=content,enum=closing" jsonschema_description:"opening for title art or chapter headings, closing for end/continued markers or credits, content otherwise"`
	Characters    []string `json:"characters" jsonschema_description:"Short descriptions of every character visible on the page"`
	Location      string   `json:"location" jsonschema_description:"Where the scene takes place"`
	Action        string   `json:"action" jsonschema_description:"What is happening on the page"`
	Dialogue      Dialogue `json:"dialogue" jsonschema_description:"Speech and narration found on the page"`
	VisualMarkers string   `json:"visualMarkers" jsonschema_description:"Notable visual features such as panel layout, effects or recurring objects"`
	Tone          string   `json:"tone" jsonschema_description:"Emotional tone of the page"`
}

type Dialogue struct {
	Present  bool             `json:"present" jsonschema_description:"Whether the page contains any text bubbles or captions"`
	Texts    []string         `json:"texts" jsonschema_description:"Transcribed text, top to bottom"`
	Kind     DialogueKind     `json:"kind" jsonschema:"enum=question,enum=answer,enum=exclamation,enum=thought,enum=narration" jsonschema_description:"Dominant kind of utterance"`
	Position DialoguePosition `json:"position" jsonschema:"enum=top,enum=middle,enum=bottom" jsonschema_description:"Where most of the text sits on the page"`
}

// Analysis is the visual analyzer output for a whole chapter.
type Analysis struct {
	Analyses []PageAnalysis `json:"analyses" jsonschema_description:"One entry per supplied image"`
}

// Ordering is what the sequencer model is asked to return.
type Ordering struct {
	Order      []string `json:"order" jsonschema_description:"Every supplied filename exactly once, in reading order"`
	Confidence float64  `json:"confidence" jsonschema_description:"Confidence in the order between 0 and 1"`
	Reasoning  string   `json:"reasoning" jsonschema_description:"Why this order was chosen"`
	Warnings   []string `json:"warnings" jsonschema_description:"Caveats about ambiguous pages, empty when there are none"`
}

// OrderingResult is the validated order handed back to the caller.
type OrderingResult struct {
	Order      []string `json:"order"`
	Confidence float64  `json:"confidence"`
	Status     Status   `json:"status"`
	Reasoning  string   `json:"reasoning"`
	Warnings   []string `json:"warnings"`
}

// SortRequest is the inbound request for sorting one chapter.
type SortRequest struct {
	Images        []PageImage `json:"images"`
	MangaTitle    string      `json:"mangaTitle"`
	ChapterNumber float64     `json:"chapterNumber"`
}

// Names returns the image names in input order.
func (r SortRequest) Names() []string {
	names := make([]string, len(r.Images))
	for i, img := range r.Images {
		names[i] = img.Name
	}
	return names
}
