package pipeline

import "fmt"

// structuredPrompt instructs the model to return one JSON page object
// per page with layout blocks. Pages are always numbered relative to
// the chunk (1..n); the pipeline remaps them to absolute numbers.
func structuredPrompt(numPages int) string {
	return fmt.Sprintf(`# ROLE / SYSTEM
You are a high-precision OCR + document layout extraction engine.
Your output will be parsed by a strict JSON parser and then used to embed an invisible text layer into a PDF.
Therefore: OUTPUT JSON ONLY. No markdown. No code fences. No commentary.

# INPUT
A Japanese document consisting of pages 1..%[1]d. Each page is provided as an image.

# ABSOLUTE OUTPUT RULES (must follow)
- Return ONLY a single JSON value: an array of page objects.
- Do NOT output any extra text before/after JSON.
- Use valid JSON: double quotes only, no trailing commas, escape special
  characters inside strings, and use \n for line breaks in text.

# TASK
For every page from 1 to %[1]d, extract text + layout into structured data.

## 1) Text transcription (accuracy first)
- Transcribe exactly what is written (Japanese). Do not translate,
  summarize, paraphrase, or add missing content.
- Correct ONLY obvious OCR confusions (e.g., 0/O, 1/I) when clearly
  supported by context. If a character is unreadable, use the
  placeholder instead of guessing.
- Remove layout-expanded spacing used purely for visual alignment.
- Preserve punctuation and keep it at the end of the correct block.

## 2) Block segmentation
- Default unit = one physical text line per block whenever possible.
- Split blocks when direction changes, font size changes significantly,
  or the text belongs to a different logical region
  (header/footer/page number/caption/title).

## 3) Bounding boxes
- Normalized per-page coordinates: top-left (0,0), page = 1000x1000.
- box.x / box.y / box.width / box.height are integers in [0, 1000],
  tightly enclosing the block's visible glyphs.

## 4) Writing direction
- direction = "horizontal" (default) or "vertical", set per block.

## 5) Logical role labeling
Pick exactly one label per block:
title, sectionHeading, subHeading, body, caption, footer, header,
pageNumber, isolated, ignored.
- header/footer: repeated marginal items. pageNumber: the printed page
  number. isolated: side notes and independent text boxes. ignored:
  noise and irrelevant markings.

## 6) Font size estimation
- font_size is an integer on the same 0..1000 page-height scale,
  approximating the block's glyph height.

## 7) Continuity / paragraph structure
- continues = true if the NEXT block continues the same logical flow,
  even across a paragraph break inside that flow (append \n\n at the
  end of the block text that ends a paragraph).
- continues = false ONLY when context clearly breaks.

## 8) Reading order inside each page
- Sort blocks in human reading order. Vertical pages: right-to-left
  columns, top-to-bottom within each column.

# OUTPUT FORMAT (JSON)
Return an array with exactly %[1]d page objects.
If a page has no text, still return: { "page_number": N, "blocks": [] }

Schema example:
[
  {
    "page_number": 1,
    "blocks": [
      {
        "text": "extracted text",
        "label": "body",
        "font_size": 12,
        "continues": false,
        "direction": "horizontal",
        "box": { "x": 100, "y": 200, "width": 300, "height": 50 }
      }
    ]
  }
]
`, numPages)
}

// markdownPrompt instructs the model to transcribe pages to Markdown
// bounded by begin/end page markers. styleContext adds document-type
// specific formatting rules.
func markdownPrompt(numPages int, styleContext string) string {
	return fmt.Sprintf(`# ROLE
High-precision OCR engine converting Japanese PDF pages to clean Markdown.

%[2]s

# INPUT
%[1]d pages of a Japanese document.

# OUTPUT RULES
1. **Markdown Only**: No conversational text.
2. **Page Markers**:
   - **Start**: At the start of content, output `+"`=-- Begin Page N {StartStatus} --=`"+`.
     - N: Batch page index (1-%[1]d).
     - {StartStatus}: "(Continuation)" if paragraph continues from previous page, else empty.
   - **End**: At the end of content, output `+"`=-- End Printed Page X {EndStatus} --=`"+`.
     - X: Printed page number or "N/A".
     - {EndStatus}: "(Continuation)" if paragraph continues to next page, else empty.
3. **Transcription Rules**:
   - **No Indentation**: Standard Markdown paragraphs.
   - **Numbers**: Convert ALL full-width numbers to half-width.
   - **Corrections**: Fix obvious OCR errors (0 vs O). Keep original typos as written.
   - **Exclusions**: Omit printed page numbers from body.
`, numPages, styleContext)
}

// Transcription style contexts selectable from the CLI.

// StyleGeneral suits evidence documents, books, and reports.
const StyleGeneral = `# CONTEXT: General Document (Evidence, Books, Reports, etc.)
- **Format**: Maintain the original structure as much as possible.
- **Line Breaks**: Merge lines within the same paragraph. Keep line breaks for headings, lists, and clear paragraph transitions.
- **Tables**: If tables are present, represent them using Markdown table format.
- **Lists**: Use standard Markdown list markers.
- **Exclusions**: Ignore headers, footers, and page numbers if they are repetitive and not part of the main content.
- **Page Numbers**: Page numbers may be Arabic, Kanji, or Roman numerals. Omit them if they are in margins, but use them for the Page Markers (converting to Arabic numerals).
- **Emphasis**: Use bold or italics where appropriate based on the visual style of the document.`

// StyleCourt suits Japanese court documents with their numbered heading
// hierarchy.
const StyleCourt = `# CONTEXT: Japanese Court Document
- **Format**: Horizontal text. Ignore line numbers, punch holes, stamps, and page numbers in margins.
- **Spaced Text**: Remove wide spacing in titles.
- **Line Breaks**: CRITICAL. Merge lines within paragraphs. Only break lines at clear paragraph ends or headings.

# STRUCTURE & HEADINGS
1. **Decision: Heading or Paragraph?** (Apply this FIRST)
   - **Paragraph**: If the text following the number/marker is a long sentence or spans multiple lines. Do NOT use a heading.
   - **Paragraph**: If you see consecutive items of the same level. Do NOT use a heading.
   - **Heading**: Only if the text is short, usually has no punctuation at the end, and is followed by body text on the next line.
2. **Heading Hierarchy** (Apply ONLY if it is a Heading)
   - Level-one markers -> H1, numbered items -> H2, parenthesized numbers -> H3, kana items -> H4, parenthesized kana -> H5.
3. **Formatting Rules**
   - **No Numbering = No Heading**: Unnumbered structural titles must be Bold.
   - **Numbering Style**: Use standard paragraphs starting with the number. Do NOT use Markdown ordered lists.`
