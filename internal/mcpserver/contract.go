package mcpserver

// JournalFormatContract describes the canonical callout journal format
// that LLM consumers should follow when writing notes for parsing.
const JournalFormatContract = `# Dagaz Journal Format Contract

Dream-journal notes are Markdown files built from nested block-quote
callouts. The parser extracts one entry per anchor callout.

## Structure

` + "```" + `markdown
> [!dream] 2024-01-15 Flying over mountains
> Free-text description of the dream. This becomes the entry content.
>
> > [!diary]
> > Optional waking-life notes; included in content depending on scope.
>
> > [!metrics]
> > Lucidity: 3, Vividness: 4
> > Mood: calm
` + "```" + `

## Rules

1. **Anchor callout.** Each entry starts with the structure's root
   callout (default ` + "`" + `[!dream]` + "`" + `). A note may hold several anchors; each
   becomes its own entry.
2. **Callout depth equals quote depth.** ` + "`" + `>` + "`" + ` is depth 1, ` + "`" + `> >` + "`" + ` is
   depth 2, and so on. Children must be exactly one level deeper than
   their parent; deeper jumps are reported as warnings.
3. **Date in the title line.** Put an ISO date (YYYY-MM-DD) in the
   anchor title. Entries without a resolvable date get the placeholder
   date ` + "`" + `unknown` + "`" + ` and an error diagnostic.
4. **Metrics.** The ` + "`" + `[!metrics]` + "`" + ` callout holds ` + "`" + `Name: value` + "`" + ` pairs
   separated by commas or newlines. Values should be numeric; string
   values are only kept for fields the structure declares.
5. **Formatting is stripped.** Wikilinks keep their alias, bold/italic
   markers are removed, and blank-line runs collapse in entry content.
6. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
7. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
> [!dream] 2024-02-03 The glass ocean
> Sailing across a glass ocean under two moons.
>
> > [!metrics]
> > Lucidity: 4, Vividness: 5
> > Mood: awe
` + "```" + `
`
