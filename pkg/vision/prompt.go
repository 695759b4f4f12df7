package vision

// AnalysisPrompt instructs the vision model to describe a screenshot in the
// marker-delimited format the parser understands. Approximate values may be
// prefixed with "~"; unknown values should be the literal null.
const AnalysisPrompt = `Analyze the attached UI screenshot and respond using EXACTLY the following sections and markers.

--- Description Start ---
One or two sentences describing the overall screen.
--- Description End ---

For EVERY visible UI element, emit one block:
--- Element Start ---
id: <integer, numbered from 1>
type: <button|link|input|text|image|container|...>
label: <visible label or null>
textContent: <visible text or null>
state: <active|disabled|focused|...>
description: <short description or null>
geometry: {x: <px>, y: <px>, width: <px>, height: <px>}
typography: {fontFamily: <name or null>, fontSize: <px or null>, fontWeight: <weight or null>, color: <hex or null>}
appearance: {backgroundColor: <hex or null>, borderColor: <hex or null>, borderWidth: <px or null>, borderRadius: <px or null>}
--- Element End ---

--- Color Palette Start ---
Backgrounds: <comma-separated hex colors>
Text Colors: <comma-separated hex colors>
Accent Colors: <comma-separated hex colors>
--- Color Palette End ---

--- Typography Start ---
- {fontFamily: <name>, fontSize: <px>, fontWeight: <weight>}
--- Typography End ---

--- Visual Audit Start ---
Accessibility:
- Color Contrast: { assessment: <short verdict>, details: <one sentence> }
- Touch Targets: { assessment: <short verdict>, details: <one sentence> }
Consistency:
- Spacing: { assessment: <short verdict>, details: <one sentence> }
Layout:
- Alignment: { assessment: <short verdict>, details: <one sentence> }
Clarity:
- Visual Hierarchy: { assessment: <short verdict>, details: <one sentence> }
--- Visual Audit End ---

Use "~" before a value that is an estimate. Use the literal null for anything you cannot determine. Do not add sections beyond the ones above.`
