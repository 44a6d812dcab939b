package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/task"
)

const (
	exactWeight   = 0.4
	includeWeight = 0.4
	excludeWeight = 0.2

	// program_html partial credit
	highRate       = 0.8
	highRateFactor = 0.85
	lowRateFactor  = 0.6

	maxTextPreview = 50
)

// stringMatch is case-sensitive substring matching over the page text
func (r *run) stringMatch(ref task.ReferenceAnswers) float64 {
	exactFound := true
	if ref.ExactMatch != "" {
		exactFound = strings.Contains(r.text, ref.ExactMatch)
		if exactFound {
			r.pass(fmt.Sprintf("Found exact: '%s'", ref.ExactMatch))
		} else {
			r.fail(fmt.Sprintf("Missing exact: '%s'", ref.ExactMatch))
		}
	}

	allIncludes := true
	for _, term := range ref.MustInclude {
		if strings.Contains(r.text, term) {
			r.pass(fmt.Sprintf("Found required: '%s'", term))
		} else {
			r.fail(fmt.Sprintf("Missing required: '%s'", term))
			allIncludes = false
		}
	}

	noExcludes := true
	for _, term := range ref.MustExclude {
		if !strings.Contains(r.text, term) {
			r.pass(fmt.Sprintf("Correctly excluded: '%s'", term))
		} else {
			r.fail(fmt.Sprintf("Found excluded term: '%s'", term))
			noExcludes = false
		}
	}

	if exactFound && allIncludes && noExcludes {
		return 1.0
	}

	score := 0.0
	if exactFound {
		score += exactWeight
	}
	if allIncludes {
		score += includeWeight
	}
	if noExcludes {
		score += excludeWeight
	}

	return score
}

func (r *run) programHTML(inspector page.Inspector, checks []task.ElementCheck) float64 {
	passed := 0
	for i := range checks {
		ok := r.checkElement(inspector, &checks[i])
		r.rec.ObserveElementCheck(ok)
		if ok {
			passed++
		}
	}

	rate := float64(passed) / float64(len(checks))
	switch {
	case rate == 1:
		return 1.0
	case rate >= highRate:
		return rate * highRateFactor
	default:
		return rate * lowRateFactor
	}
}

// checkElement runs exactly one sub-check against the first matching element.
// Inspector errors fail the check and never abort the remaining checks.
func (r *run) checkElement(inspector page.Inspector, check *task.ElementCheck) bool {
	ok, err := r.evalElement(inspector, check)
	if err != nil {
		r.logger.Warn("error checking element", zap.String("locator", check.Locator), zap.Error(err))
		r.fail(fmt.Sprintf("Error checking: %s", check.Locator))
		return false
	}

	return ok
}

func (r *run) evalElement(inspector page.Inspector, check *task.ElementCheck) (bool, error) {
	elements, err := inspector.Query(r.ctx, check.Locator)
	if err != nil {
		return false, err
	}

	if len(elements) == 0 {
		r.fail(fmt.Sprintf("Element not found: %s", check.Locator))
		return false, nil
	}

	el := elements[0]
	attr := check.AttributeName()
	contents := check.Contents()

	if check.RequiresVisible() {
		visible, err := el.IsVisible(r.ctx)
		if err != nil {
			return false, err
		}
		if visible {
			r.pass(fmt.Sprintf("Element visible: %s", check.Locator))
		} else {
			r.fail(fmt.Sprintf("Element not visible: %s", check.Locator))
		}
		return visible, nil
	}

	if attr != "" && (contents != "" || check.RequiredRange != nil) {
		value, present, err := el.Attribute(r.ctx, attr)
		if err != nil {
			return false, err
		}

		if contents != "" {
			return r.attributeContains(attr, contents, value, present), nil
		}

		return r.attributeInRange(attr, *check.RequiredRange, value, present), nil
	}

	if contents != "" && attr == "" {
		text, err := el.Text(r.ctx)
		if err != nil {
			return false, err
		}
		if containsFold(text, contents) {
			r.pass(fmt.Sprintf("Element contains: '%s'", contents))
			return true, nil
		}
		r.fail(fmt.Sprintf("Element missing text: '%s' (got: %s)", contents, preview(text)))
		return false, nil
	}

	if check.CheckType() == task.CheckTextChanged {
		text, err := el.Text(r.ctx)
		if err != nil {
			return false, err
		}
		if strings.TrimSpace(text) != "" {
			r.pass(fmt.Sprintf("Element has content: %s", check.Locator))
			return true, nil
		}
		r.fail(fmt.Sprintf("Element empty: %s", check.Locator))
		return false, nil
	}

	r.pass(fmt.Sprintf("Element exists: %s", check.Locator))
	return true, nil
}

func (r *run) attributeContains(attr, contents, value string, present bool) bool {
	if present && value != "" && containsFold(value, contents) {
		r.pass(fmt.Sprintf("Attribute '%s' contains '%s'", attr, contents))
		return true
	}

	got := value
	if !present {
		got = "<missing>"
	}
	r.fail(fmt.Sprintf("Attribute '%s' missing '%s' (got: %s)", attr, contents, got))

	return false
}

// attributeInRange reads an absent or empty attribute as 0
func (r *run) attributeInRange(attr string, rng task.Range, value string, present bool) bool {
	n := 0.0
	if present && value != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			r.fail(fmt.Sprintf("Attribute '%s' not numeric: %s", attr, value))
			return false
		}
		n = parsed
	}

	if rng.Contains(n) {
		r.pass(fmt.Sprintf("Attribute '%s' in range [%v, %v]: %v", attr, rng.Min, rng.Max, n))
		return true
	}

	r.fail(fmt.Sprintf("Attribute '%s' out of range (got: %v)", attr, n))
	return false
}

// urlMatch prefers url_pattern (regex search) over exact_match (equality)
func (r *run) urlMatch(ref task.ReferenceAnswers) float64 {
	switch {
	case ref.URLPattern != "":
		re, err := regexp.Compile(ref.URLPattern)
		if err != nil {
			r.logger.Warn("invalid url pattern", zap.String("pattern", ref.URLPattern), zap.Error(err))
			r.fail(fmt.Sprintf("Invalid URL pattern: %s", ref.URLPattern))
			return 0.0
		}
		if re.MatchString(r.url) {
			r.pass(fmt.Sprintf("URL matches pattern: %s", ref.URLPattern))
			return 1.0
		}
		r.fail(fmt.Sprintf("URL doesn't match pattern: %s (got: %s)", ref.URLPattern, r.url))
		return 0.0
	case ref.ExactMatch != "":
		if r.url == ref.ExactMatch {
			r.pass(fmt.Sprintf("URL matches exactly: %s", ref.ExactMatch))
			return 1.0
		}
		r.fail(fmt.Sprintf("URL doesn't match: expected '%s', got '%s'", ref.ExactMatch, r.url))
		return 0.0
	default:
		r.fail("No URL pattern or exact match specified in eval config")
		return 0.0
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) > maxTextPreview {
		return string(runes[:maxTextPreview])
	}
	return s
}
