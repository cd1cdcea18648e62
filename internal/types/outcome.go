package types

type FailureKind int

const (
	DownloadFailure FailureKind = iota + 1
	TranscriptionFailure
	SelectionFailure
	RenderFailure
	UnexpectedFailure
)

func (k FailureKind) String() string {
	switch k {
	case DownloadFailure:
		return "download"
	case TranscriptionFailure:
		return "transcription"
	case SelectionFailure:
		return "selection"
	case RenderFailure:
		return "render"
	default:
		return "unexpected"
	}
}

// Message is the concise, stage-labelled text shown to the end user.
func (k FailureKind) Message() string {
	switch k {
	case DownloadFailure:
		return "Falha no download"
	case TranscriptionFailure:
		return "Falha na transcrição"
	case SelectionFailure:
		return "Nenhum momento identificado"
	case RenderFailure:
		return "Falha ao gerar clips"
	default:
		return "Erro inesperado"
	}
}

type Failure struct {
	Kind   FailureKind
	Reason string
}

func (f *Failure) Error() string { return f.Kind.String() + ": " + f.Reason }

// Outcome is the only value the orchestrator hands back: either clips or a
// failure, never both.
type Outcome struct {
	Clips   []Clip
	Failure *Failure
}

func Succeeded(clips []Clip) Outcome { return Outcome{Clips: clips} }

func Failed(kind FailureKind) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Reason: kind.Message()}}
}

func (o Outcome) Success() bool { return o.Failure == nil }

func (o Outcome) Paths() []string {
	out := make([]string, 0, len(o.Clips))
	for _, c := range o.Clips {
		out = append(out, c.Path)
	}
	return out
}

func (o Outcome) Titles() []string {
	out := make([]string, 0, len(o.Clips))
	for _, c := range o.Clips {
		out = append(out, c.Title)
	}
	return out
}
