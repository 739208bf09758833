package mcpserver

// NoteFormatContract describes how sticky notes are laid out on disk so LLM
// consumers can interpret what the tools return.
const NoteFormatContract = `# Sticky Note Storage Format

Every note is a directory directly under the notes root. The directory name
is the note id and also the window title.

## Files

| File | Content |
|---|---|
| ` + "`current.txt`" + ` | the note text, stored exactly as typed |
| ` + "`backup-N.txt`" + ` | copy of the text as of the last save on ISO weekday N (1 = Monday .. 7 = Sunday) |
| ` + "`geometry.txt`" + ` | one line ` + "`WxH+X+Y`" + `, the window size and position |
| ` + "`style.txt`" + ` | ` + "`key=value`" + ` lines, never rewritten by the application |

## Style keys

- ` + "`bgColor`" + `, ` + "`barColor`" + `, ` + "`fontColor`" + `: colors (names or ` + "`#RRGGBB`" + `)
- ` + "`fontFamily`" + `, ` + "`fontSize`" + ` (points), ` + "`fontWeight`" + ` (` + "`normal`" + ` or ` + "`bold`" + `)
- ` + "`xAdjust`" + `, ` + "`yAdjust`" + `: offsets added to the position when it is saved
- ` + "`ORR`" + `: ` + "`True`" + ` renders the window without decorations

## Conventions

- Text has no implied trailing newline; what you read is what was typed.
- A backup is overwritten once a week; older versions are not kept.
- Tags are inline ` + "`#words`" + ` in the text; the title is the first non-blank line.
`
