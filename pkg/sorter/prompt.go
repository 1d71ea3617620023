package sorter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pagesort/pkg/schema"
)

const analyzePrompt = `You are a meticulous manga and manhwa page analyst. You will receive every page of one chapter as images. Each image is preceded by a line "Image filename: <name>". Your task is to describe each page so that a later step can work out the reading order. You must NOT decide or suggest an order yourself.

The filenames are random identifiers assigned at upload time. They carry no information about page position. Never use the filenames, their characters or the order in which the images were attached as a hint about where a page belongs.

Return a single JSON object with one root key 'analyses', an array with exactly one entry per image, each containing:
  * 'filename': the exact filename from the label before the image, copied verbatim.
  * 'pageType': "opening" for title art, chapter headings or credits pages that start a chapter; "closing" for "to be continued", end markers, afterwords or credits that end it; "content" otherwise.
  * 'characters': short descriptions of every character visible (appearance, clothing, names if shown).
  * 'location': where the scene takes place.
  * 'action': what is happening on the page.
  * 'dialogue': an object with
    - 'present': whether there is any speech, thought or caption text,
    - 'texts': the transcribed text in its original language, top to bottom,
    - 'kind': the dominant utterance, one of "question", "answer", "exclamation", "thought", "narration",
    - 'position': where most of the text sits, one of "top", "middle", "bottom".
  * 'visualMarkers': panel layout, effects, recurring objects, page numbers printed in the art.
  * 'tone': the emotional tone.

**Rules**:
- Describe only what is visible. Do not invent story beyond the page.
- Every supplied filename must appear exactly once. Do not add filenames that were not supplied.
- Respond with the JSON object only, without commentary or markdown formatting.`

const sequencePrompt = `You are an expert manga and manhwa editor. You will receive every page of one chapter as images, each preceded by a line "Image filename: <name>", together with a prior description of each page. Your task is to determine the correct reading order.

The filenames are random identifiers and the attachment order is arbitrary. Neither says anything about where a page belongs.

Decide the order with these rules, in priority order:
1. Anchor the ends: pages described as "opening" (title art, chapter headings) go first and pages described as "closing" ("to be continued", end markers, credits) go last.
2. Dialogue continuity: a question comes before its answer, and unresolved dialogue carries over to the page that resolves it.
3. Action continuity: cause comes before effect, and preparation comes before execution, which comes before the result.
4. Scene continuity: keep pages of the same location and moment together and move between scenes only where a transition is shown.

Return a single JSON object with:
  * 'order': every supplied filename exactly once, in reading order. Use the filenames exactly as given.
  * 'confidence': a number between 0 and 1 for how certain you are of the full order.
  * 'reasoning': a short explanation of the order.
  * 'warnings': an array of caveats about ambiguous pages, empty if there are none.

Respond with the JSON object only, without commentary or markdown formatting.`

func analyzeUser(names []string) string {
	return fmt.Sprintf("Describe each of the %d pages below. Filenames: %s", len(names), strings.Join(names, ", "))
}

func sequenceUser(title string, chapter float64, names []string, analyses []schema.PageAnalysis) (string, error) {
	bin, err := json.MarshalIndent(schema.Analysis{Analyses: analyses}, "", " ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Work: %s\n", title)
	}
	fmt.Fprintf(&b, "Chapter: %s\n", strconv.FormatFloat(chapter, 'f', -1, 64))
	fmt.Fprintf(&b, "Total pages: %d\n", len(names))
	fmt.Fprintf(&b, "Filenames: %s\n\n", strings.Join(names, ", "))
	b.WriteString("Page descriptions:\n```json\n")
	b.Write(bin)
	b.WriteString("\n```\n")
	return b.String(), nil
}
