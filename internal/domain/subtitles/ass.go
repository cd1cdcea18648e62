package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/gxbriex/clips/internal/types"
)

// Limits for one on-screen line on a 9:16 frame.
const (
	lineChars = 28
	lineWords = 6
)

// RenderASS builds an ASS subtitle track for one clip window. Event times are
// relative to the window start since each clip is rendered from its own seek
// point. The play resolution matches the cropped frame.
func RenderASS(tr types.Transcript, win types.Window, frame types.Crop) string {
	start, end := dur(win.Start), dur(win.End)
	words := collectWords(tr, start, end)
	if len(words) == 0 {
		return renderPlain(frame, collectSegmentText(tr, start, end), end-start)
	}
	return renderKaraoke(frame, packWords(words))
}

type cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type line struct {
	Start time.Duration
	End   time.Duration
	Words []cue
}

func collectWords(tr types.Transcript, start, end time.Duration) []cue {
	var out []cue
	for _, s := range tr.Segments {
		for _, w := range s.Words {
			ws, we := dur(w.Start), dur(w.End)
			if we <= start || ws >= end {
				continue
			}
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			ws = max(ws, start)
			we = min(we, end)
			out = append(out, cue{Start: ws - start, End: we - start, Text: sanitize(text)})
		}
	}
	return out
}

func collectSegmentText(tr types.Transcript, start, end time.Duration) string {
	var parts []string
	for _, s := range tr.Segments {
		if dur(s.End) <= start || dur(s.Start) >= end {
			continue
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func packWords(words []cue) []line {
	var out []line
	var cur line
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w.Text))
		next := curLen + wl
		if curLen > 0 {
			next++
		}
		if len(cur.Words) == 0 {
			cur.Start = w.Start
		} else if len(cur.Words) >= lineWords || next > lineChars {
			cur.End = cur.Words[len(cur.Words)-1].End
			out = append(out, cur)
			cur = line{Start: w.Start}
			curLen = 0
			next = wl
		}
		cur.Words = append(cur.Words, w)
		curLen = next
		if endsSentence(w.Text) {
			cur.End = w.End
			out = append(out, cur)
			cur = line{}
			curLen = 0
		}
	}
	if len(cur.Words) == 0 {
		return out
	}
	cur.End = cur.Words[len(cur.Words)-1].End
	return append(out, cur)
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}

func renderKaraoke(frame types.Crop, lines []line) string {
	var b strings.Builder
	writeHeader(&b, frame)
	for _, ln := range lines {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Clip,,0,0,0,,", assTime(ln.Start), assTime(ln.End))
		for i, w := range ln.Words {
			cs := max(int((w.End-w.Start)/(10*time.Millisecond)), 1)
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "{\\k%d}%s", cs, w.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderPlain(frame types.Crop, text string, length time.Duration) string {
	var b strings.Builder
	writeHeader(&b, frame)
	if text = sanitize(text); text != "" {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Clip,,0,0,0,,%s\n", assTime(0), assTime(length), text)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, frame types.Crop) {
	w, h := frame.Width, frame.Height
	if w <= 0 || h <= 0 {
		w, h = 1080, 1920
	}
	fontSize := h / 24
	marginV := h / 6
	fmt.Fprintf(b, `[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Clip,Arial,%d,&H00FFFFFF,&H0000D7FF,&H00000000,&H64000000,1,0,0,0,100,100,0,0,1,4,1,2,40,40,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, w, h, fontSize, marginV)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", cs/360000, cs/6000%60, cs/100%60, cs%100)
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
