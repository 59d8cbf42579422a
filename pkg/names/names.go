// Package names implements person-name cleaning, role extraction, and
// duplicate matching for the Ingester's get_or_create_person step
// (§4.10). Grounded on original_source/apps/pipeline/pipeline/utils.py
// (clean_person_name, extract_roles_from_name, match_person,
// normalize_person_name) and src/core/names.py (is_valid_name,
// PERSON_BLOCKLIST) — reworked to take the municipality's name-variant
// map and canonical-name list as data (from MunicipalityConfig) rather
// than the original's hardcoded View Royal council roster, since a
// general civic pipeline onboards many municipalities.
package names

import (
	"regexp"
	"strings"
)

// rolePattern maps a regex to the (role, organization classification)
// it implies when found in a speaker label, in original_source's
// ROLE_PATTERNS order (most specific first).
type rolePattern struct {
	re   *regexp.Regexp
	role string
	org  string
}

var rolePatterns = []rolePattern{
	{regexp.MustCompile(`(?i)\bActing Mayor\b`), "Acting Mayor", "Council"},
	{regexp.MustCompile(`(?i)\bMayor\b`), "Mayor", "Council"},
	{regexp.MustCompile(`(?i)\bCouncill?or\b`), "Councillor", "Council"},
	{regexp.MustCompile(`(?i)\bChief Administrative Officer\b|\bCAO\b`), "Chief Administrative Officer", "Staff"},
	{regexp.MustCompile(`(?i)\bCorporate Officer\b`), "Corporate Officer", "Staff"},
	{regexp.MustCompile(`(?i)\bFire Chief\b`), "Fire Chief", "Staff"},
	{regexp.MustCompile(`(?i)\bDirector of (Finance|Engineering|Planning|Development Services|Corporate Administration|Parks|Recreation)\b`), "", "Staff"},
	{regexp.MustCompile(`(?i)\bDirector\b`), "Director", "Staff"},
	{regexp.MustCompile(`(?i)\bManager of (Accounting|Finance|Engineering|Planning)\b`), "", "Staff"},
	{regexp.MustCompile(`(?i)\bManager\b`), "Manager", "Staff"},
	{regexp.MustCompile(`(?i)\bSenior Planner\b`), "Senior Planner", "Staff"},
	{regexp.MustCompile(`(?i)\bPlanner\b`), "Planner", "Staff"},
	{regexp.MustCompile(`(?i)\bTown Engineer\b|\bCity Engineer\b`), "Town Engineer", "Staff"},
	{regexp.MustCompile(`(?i)\bStaff\b`), "Staff Member", "Staff"},
}

var longTitlePrefixes = []string{
	"Chief Administrative Officer", "Corporate Officer",
	"Director of Finance and Technology", "Director of Finance",
	"Director of Engineering", "Director of Planning",
	"Director of Development Services", "Director of Corporate Administration",
	"Director of Protective Services",
	"Manager of Accounting", "Deputy Corporate Officer", "Deputy Municipal Clerk",
}

var shortTitlePrefixes = []string{
	"Acting Mayor", "Mayor", "Councillor", "Councilor", "Council member", "Cclr",
	"Dr.", "Mr.", "Mrs.", "Ms.", "Chief", "Director", "Planner", "Staff", "Fire Chief",
}

var parenRe = regexp.MustCompile(`\s*\([^)]*\)`)
var spacedLettersRe = regexp.MustCompile(`^([A-Za-z]\s){3,}`)

// Role is one role a raw speaker label implies.
type Role struct {
	Role         string
	Organization string
}

// ExtractRoles finds every role implied by a raw speaker label, most
// specific first, with subset roles dropped (e.g. "Director" is
// dropped if "Director of Finance" also matched).
func ExtractRoles(raw string) []Role {
	var found []Role
	for _, p := range rolePatterns {
		m := p.re.FindString(raw)
		if m == "" {
			continue
		}
		role := p.role
		if role == "" {
			role = strings.TrimSpace(m)
		}
		found = append(found, Role{Role: role, Organization: p.org})
	}

	var final []Role
	for _, r1 := range found {
		subset := false
		for _, r2 := range found {
			if r1 == r2 {
				continue
			}
			if strings.Contains(r2.Role, r1.Role) && len(r2.Role) > len(r1.Role) {
				subset = true
				break
			}
		}
		if !subset {
			final = append(final, r1)
		}
	}
	return dedupRoles(final)
}

func dedupRoles(roles []Role) []Role {
	seen := make(map[Role]struct{})
	var out []Role
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// CleanPersonName strips titles, honorifics, and parenthetical notes
// from a raw speaker label: "Mayor David Screech" -> "David Screech",
// "K. Anema, Chief Administrative Officer" -> "K. Anema".
func CleanPersonName(raw string) string {
	name := raw
	if name == "" {
		return ""
	}

	if spacedLettersRe.MatchString(name) {
		name = strings.ReplaceAll(name, " ", "")
	}

	for _, d := range []string{",", "–", "—", " - "} {
		if idx := strings.Index(name, d); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
	}

	name = parenRe.ReplaceAllString(name, "")

	for _, p := range longTitlePrefixes {
		name = trimPrefixCI(name, p)
	}
	for _, p := range shortTitlePrefixes {
		name = trimPrefixCI(name, p)
	}

	return strings.TrimSpace(name)
}

func trimPrefixCI(name, prefix string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < len(prefix) {
		return name
	}
	if !strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return name
	}
	rest := trimmed[len(prefix):]
	rest = strings.TrimPrefix(rest, ".")
	if rest == "" {
		return ""
	}
	if rest[0] != ' ' {
		return name
	}
	return strings.TrimSpace(rest)
}

// Canonicalizer resolves a cleaned name to its municipality-specific
// canonical form, using a name-variant lookup and a canonical-name
// list supplied by the municipality's onboarding config (no hardcoded
// roster — every municipality brings its own).
type Canonicalizer struct {
	variants  map[string]string // lowercased, dot-stripped variant -> canonical
	canonical []string
	blocklist []string
}

var defaultBlocklist = []string{
	"the mayor", "staff", "resident", "unknown", "speaker", "everyone",
	"all council", "public", "audience", "applicant", "consultant",
	"gallery", "various", "multiple", "unidentified", "city staff",
	"town staff", "clerk", "recording secretary", "moderator",
	"presenter", "developer", "architect", "engineer", "planner",
}

// NewCanonicalizer builds a Canonicalizer from a municipality's known
// canonical names and variant aliases (e.g. {"screech": "David Screech"}).
func NewCanonicalizer(canonicalNames []string, variants map[string]string) *Canonicalizer {
	lowerVariants := make(map[string]string, len(variants))
	for k, v := range variants {
		lowerVariants[strings.ToLower(strings.ReplaceAll(k, ".", ""))] = v
	}
	return &Canonicalizer{
		variants:  lowerVariants,
		canonical: canonicalNames,
		blocklist: defaultBlocklist,
	}
}

// Canonicalize cleans then canonicalizes a raw speaker label.
func (c *Canonicalizer) Canonicalize(raw string) string {
	return c.canonicalName(CleanPersonName(raw))
}

func (c *Canonicalizer) canonicalName(clean string) string {
	if clean == "" {
		return clean
	}
	lower := strings.ToLower(strings.ReplaceAll(clean, ".", ""))
	if canon, ok := c.variants[lower]; ok {
		return canon
	}
	for _, cn := range c.canonical {
		if strings.EqualFold(cn, clean) {
			return cn
		}
	}
	parts := strings.Fields(clean)
	if len(parts) == 1 {
		if canon, ok := c.variants[strings.ToLower(parts[0])]; ok {
			return canon
		}
	}
	return clean
}

// InCanonicalSet reports whether name (already canonicalized) is one of
// the municipality's known council/staff names. Used by the refiner's
// repair layer to drop attendees/voters who claim a council title but
// don't resolve to anyone on the roster (likely hallucinations).
func (c *Canonicalizer) InCanonicalSet(name string) bool {
	for _, cn := range c.canonical {
		if strings.EqualFold(cn, name) {
			return true
		}
	}
	return false
}

// IsValid reports whether name should ever become a Person record: not
// empty, not on the blocklist, not too short, no stray digits.
func (c *Canonicalizer) IsValid(name string) bool {
	return IsValidName(name)
}

// IsValidName applies the municipality-agnostic validity rules.
func IsValidName(name string) bool {
	clean := strings.ToLower(strings.TrimSpace(name))
	if clean == "" {
		return false
	}
	for _, blocked := range defaultBlocklist {
		if clean == blocked || strings.HasPrefix(clean, blocked+" ") {
			return false
		}
	}
	if len(clean) < 3 {
		return false
	}
	for _, r := range clean {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

// MatchExisting finds the best matching person ID among existing
// people for a cleaned name: exact match, then unique surname match.
// Returns 0 if no confident match exists.
func MatchExisting(cleanedName string, existing map[int]string) int {
	if cleanedName == "" {
		return 0
	}
	lower := strings.ToLower(cleanedName)
	for id, n := range existing {
		if strings.ToLower(n) == lower {
			return id
		}
	}

	parts := strings.Fields(cleanedName)
	if len(parts) == 0 {
		return 0
	}
	surname := strings.ToLower(parts[len(parts)-1])
	var matches []int
	for id, n := range existing {
		np := strings.Fields(n)
		if len(np) == 0 {
			continue
		}
		if strings.ToLower(np[len(np)-1]) == surname {
			matches = append(matches, id)
		}
	}
	if len(matches) == 1 {
		return matches[0]
	}
	return 0
}
