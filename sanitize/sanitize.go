// Package sanitize hardens LLM-generated Manim source before execution.
//
// The renderer only ever sees sanitized text; anything a rule cannot fix is
// left as-is and surfaces at render time. Each rule is an independent,
// whole-source rewrite so multi-line constructs are handled, and every rule
// is idempotent: running the pass twice yields the same output.
package sanitize

import (
	"regexp"
	"strings"
)

// Rule is one textual rewrite applied to the whole generated source
type Rule struct {
	Name      string
	Rationale string
	Apply     func(string) string
}

func regexRule(name, rationale, pattern, replacement string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name:      name,
		Rationale: rationale,
		Apply: func(src string) string {
			return re.ReplaceAllString(src, replacement)
		},
	}
}

// Rules is the ordered rewrite battery. Rules accumulate empirically against
// the renderer's quirks; append new ones rather than widening existing
// patterns, so each stays independently testable.
var Rules = []Rule{
	// Renamed / removed API surface from older Manim versions the model
	// still emits.
	regexRule("show-creation",
		"ShowCreation was renamed to Create in Manim CE",
		`\bShowCreation\(`, `Create(`),
	regexRule("text-mobject",
		"TextMobject was replaced by Text in Manim CE",
		`\bTextMobject\(`, `Text(`),
	regexRule("fade-in-from",
		"FadeInFrom(obj, direction) no longer exists; drop the direction",
		`\bFadeInFrom\(\s*([^,()]+?)\s*,[^()]*\)`, `FadeIn($1)`),
	regexRule("get-graph",
		"GraphScene.get_graph became Axes.plot",
		`\.get_graph\(`, `.plot(`),

	// Invalid parameter names the model hallucinates.
	regexRule("uv-resolution",
		"uv_resolution is not a Manim parameter; resolution is",
		`\buv_resolution\s*=`, `resolution=`),
	regexRule("angle-in-degrees",
		"angle_in_degrees does not exist; convert to angle with DEGREES",
		`\bangle_in_degrees\s*=\s*([0-9]+(?:\.[0-9]+)?)`, `angle=$1 * DEGREES`),
	regexRule("dash-length",
		"dash_length is rejected by the renderer; strip the argument",
		`,\s*dash_length\s*=\s*[0-9]+(?:\.[0-9]+)?`, ``),
	regexRule("sphere-positional",
		"Sphere radius is keyword-only",
		`\bSphere\(\s*([0-9]+(?:\.[0-9]+)?)`, `Sphere(radius=$1`),
	regexRule("cube-positional",
		"Cube side_length is keyword-only",
		`\bCube\(\s*([0-9]+(?:\.[0-9]+)?)`, `Cube(side_length=$1`),
	// Only matches bare opacity= as a call argument; fill_opacity= is
	// preceded by '_' so the rule never reapplies to its own output.
	regexRule("bare-opacity",
		"opacity= as a constructor kwarg must be fill_opacity=",
		`([(,]\s*)opacity\s*=`, `${1}fill_opacity=`),

	// Color aliases outside the allowed canonical set.
	regexRule("color-shade-suffix",
		"shade suffixes (_A.._E) are outside the allowed palette",
		`\b(RED|BLUE|GREEN|YELLOW|ORANGE|PURPLE|TEAL|GOLD|GRAY)_[A-E]\b`, `$1`),
	regexRule("green-screen",
		"GREEN_SCREEN is not an allowed color",
		`\bGREEN_SCREEN\b`, `GREEN`),
	regexRule("light-dark-prefix",
		"LIGHT_/DARK_ variants normalize to the base color",
		`\b(?:LIGHT|DARK)_(RED|BLUE|GREEN|YELLOW|GRAY|GREY)\b`, `$1`),
	regexRule("grey-spelling",
		"GREY spelling normalizes to GRAY",
		`\bGREY(?:_[A-E])?\b`, `GRAY`),

	// Degenerate numeric arguments.
	regexRule("zero-wait",
		"wait(0) hangs some renderer versions; clamp to the 0.5s minimum",
		`self\.wait\(\s*0(?:\.0+)?\s*\)`, `self.wait(0.5)`),
	regexRule("zero-run-time",
		"run_time=0 is rejected; clamp to the 0.5s minimum",
		`\brun_time\s*=\s*0(?:\.0+)?\s*([,)])`, `run_time=0.5$1`),

	{
		Name:      "frame-constants",
		Rationale: "FRAME_WIDTH/FRAME_HEIGHT are ManimGL names; define them from config",
		Apply:     injectFrameConstants,
	},
	{
		Name:      "forbidden-heavyweights",
		Rationale: "LaTeX, matrix and external-asset mobjects are disabled; comment out, keep line numbers",
		Apply:     commentForbidden,
	},
}

// Sanitize applies every rule in order. Pure text transform, never fails.
func Sanitize(src string) string {
	for _, r := range Rules {
		src = r.Apply(src)
	}
	return src
}

var frameConstRef = regexp.MustCompile(`\bFRAME_(WIDTH|HEIGHT)\b`)

const frameConstDecl = "FRAME_WIDTH = config.frame_width\nFRAME_HEIGHT = config.frame_height"

// injectFrameConstants forward-declares frame constants the generated code
// assumes exist, immediately after the import line. Skipped when the code
// never references them or the declaration is already present.
func injectFrameConstants(src string) string {
	if !frameConstRef.MatchString(src) || strings.Contains(src, frameConstDecl) {
		return src
	}
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "from manim import") {
			rest := append([]string{frameConstDecl}, lines[i+1:]...)
			lines = append(lines[:i+1:i+1], rest...)
			return strings.Join(lines, "\n")
		}
	}
	return src
}

var forbiddenCall = regexp.MustCompile(`\b(MathTex|Tex|Matrix|SVGMobject|ImageMobject)\(`)

// commentForbidden comments out (rather than deletes) lines using the
// forbidden heavyweight mobjects, preserving line numbers for debugging.
func commentForbidden(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if forbiddenCall.MatchString(line) {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			lines[i] = indent + "# " + strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
