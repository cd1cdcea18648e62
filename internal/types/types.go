package types

// MaxExcerpts caps how many excerpts a single request may turn into clips.
const MaxExcerpts = 7

type Transcript struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Excerpt is a model-proposed span of the source video. The JSON names follow
// the schema the selector prompt asks for.
type Excerpt struct {
	Title string  `json:"titulo"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Window struct {
	Start float64
	End   float64
}

func (w Window) Duration() float64 { return w.End - w.Start }

type Crop struct {
	Width  int
	Height int
	X      int
	Y      int
}

type VideoInfo struct {
	Width    int
	Height   int
	Duration float64
}

// Clip is a rendered file paired with the title of the excerpt it came from.
type Clip struct {
	Path  string
	Title string
	Start float64
	End   float64
}

type Manifest struct {
	Input  string         `json:"input"`
	Source string         `json:"source"`
	Clips  []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID       string  `json:"id"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	File     string  `json:"file"`
	Title    string  `json:"title"`
}
