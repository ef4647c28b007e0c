package projectsvc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kristianernst/fast-slides/internal/apperr"
)

// Starter page defaults.
const (
	DefaultTitle     = "Presentation"
	DefaultSubtitle  = "Project Overview"
	DefaultDateLabel = "Month YYYY"
)

const starterTemplate = `---
project: {{project}}
title: {{title}}
subtitle: {{subtitle}}
date: {{date}}
---

<main className="deck">

<section className="slide">

# {{title}}

<div className="flex flex-col h-full justify-center">
  <div className="text-6xl font-extrabold text-neutral-900 mb-6">{{subtitle}}</div>
  <div className="text-2xl text-neutral-500">{{date}}</div>
</div>

</section>

<section className="slide">

# Problem

<div className="split">
  <div className="col prose-compact">

  - Current process is fragmented across inboxes and handoffs.
  - Ownership is unclear for time-sensitive messages.
  - Manual triage creates delays and rework.

  </div>
  <div className="col prose-compact">

  - Delays reduce responsiveness and predictability.
  - Teams spend time coordinating instead of resolving.
  - Leadership lacks a clear operational signal.

  </div>
</div>

</section>

<section className="slide">

# Proposal

<div className="split">
  <div className="col prose-compact">

  1. Classify incoming messages by intent and urgency.
  2. Route each message to a clear owner.
  3. Track response timing and outcomes.

  </div>
  <div className="col prose-compact">

  ## Expected Outcome

  - Faster first response
  - Lower coordination overhead
  - Better visibility for management decisions

  </div>
</div>

</section>

</main>
`

// StarterPage renders the page document for a new project. Every
// substituted value is a double-quoted YAML scalar, in the frontmatter and
// in the slide body alike.
func StarterPage(project, title, subtitle, date string) string {
	return strings.NewReplacer(
		"{{project}}", yamlQuote(project),
		"{{title}}", yamlQuote(title),
		"{{subtitle}}", yamlQuote(subtitle),
		"{{date}}", yamlQuote(date),
	).Replace(starterTemplate)
}

func yamlQuote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func baseName(dir string) string {
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return "unknown"
	}
	return name
}

func joinInvalid(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidName, err)
}
