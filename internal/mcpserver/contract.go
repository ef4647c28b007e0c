package mcpserver

// DeckFormatContract describes the page document format that LLM consumers
// should follow when creating or editing deck projects.
const DeckFormatContract = `# FastSlides Deck Format Contract

A deck project is a folder whose name matches the ` + "`" + `project` + "`" + ` field and
which contains a ` + "`" + `page.mdx` + "`" + ` file plus optional asset folders.

## Layout

` + "```" + `text
q3-review/
  page.mdx
  images/
  media/
  data/
` + "```" + `

## Structure

` + "```" + `mdx
---
project: "q3-review"        # REQUIRED, must equal the folder name
title: "Q3 Review"          # REQUIRED
subtitle: "Project Overview"
date: "Month YYYY"
---

<main className="deck">

<section className="slide">

# Q3 Review

</section>

</main>
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "`" + `---` + "`" + ` fences must be the first
   thing in the file. Keys are simple ` + "`" + `key: value` + "`" + ` pairs.
2. **` + "`" + `project` + "`" + ` and ` + "`" + `title` + "`" + ` are required.** ` + "`" + `project` + "`" + ` must equal the folder name.
3. **One slide per section.** Every slide is a ` + "`" + `<section className="slide">` + "`" + `
   block closed by ` + "`" + `</section>` + "`" + `.
4. **Content only.** No ` + "`" + `import` + "`" + ` or ` + "`" + `export` + "`" + ` statements and no
   ` + "`" + `"use client"` + "`" + ` directive.
5. **Keep slides light.** At most 140 words, 8 bullets, and 55 words per
   paragraph on one slide; denser slides are reported as warnings.

## Assets & Images

- Upload assets via the ` + "`" + `add_asset` + "`" + ` tool. The folder follows the content type
  (images, media, data) unless you pass one, and the result carries a ` + "`" + `snippet` + "`" + `
  ready to paste into the slide.
- Assets live in ` + "`" + `images/` + "`" + `, ` + "`" + `media/` + "`" + `, ` + "`" + `data/` + "`" + ` (or ` + "`" + `assets/` + "`" + `) inside the project.
- Reference them with project-relative paths: ` + "`" + `![Chart](images/chart.png)` + "`" + ` or
  ` + "`" + `<img src="/images/chart.png" />` + "`" + `.
- Paths that climb out of the project (` + "`" + `../` + "`" + `) are rejected.

## Checking your work

Call ` + "`" + `validate_project` + "`" + ` after every edit. Errors must be fixed; warnings
are advisory. ` + "`" + `audit_project` + "`" + ` lists missing and unused asset files.
`
