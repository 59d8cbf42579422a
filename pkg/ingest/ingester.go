// Package ingest implements the central Ingester (§4.10): it takes a
// meeting folder, its refined LLM output (pkg/models.MeetingRefinement),
// and writes the organization/meeting/person/matter/agenda-item/motion/
// vote/key-statement rows the rest of the product reads. Grounded on
// original_source/apps/pipeline/pipeline/ingestion/ingester.py's
// MeetingIngester, reworked onto ent's generated client instead of the
// Supabase REST wrapper the original drives.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/matter"
	"github.com/viewroyal/civicpipe/ent/membership"
	"github.com/viewroyal/civicpipe/ent/organization"
	"github.com/viewroyal/civicpipe/ent/person"
	matterpkg "github.com/viewroyal/civicpipe/pkg/matter"
	"github.com/viewroyal/civicpipe/pkg/geocode"
	"github.com/viewroyal/civicpipe/pkg/names"
)

// Ingester owns the write path for one municipality. Not safe for
// concurrent IngestMeeting calls against the same matter Index (mirrors
// the matter.Matcher's own non-concurrent contract).
type Ingester struct {
	db             *ent.Client
	matcher        *matterpkg.Matcher
	geocoder       *geocode.Client
	canon          *names.Canonicalizer
	municipalityID int
}

// New builds an Ingester. matcher should be seeded (matter.Index.Seed)
// with the municipality's existing matters before first use.
func New(db *ent.Client, municipalityID int, matcher *matterpkg.Matcher, geocoder *geocode.Client, canon *names.Canonicalizer) *Ingester {
	return &Ingester{
		db:             db,
		matcher:        matcher,
		geocoder:       geocoder,
		canon:          canon,
		municipalityID: municipalityID,
	}
}

// orgClassifications maps a meeting type to its governing body's name and
// classification, in original_source's map_type_to_org order (most
// specific first).
var orgClassifications = []struct {
	matchType      string
	orgName        string
	classification string
}{
	{"Public Hearing", "Council", "Council"},
	{"Special Council", "Council", "Council"},
	{"Committee of the Whole", "Committee of the Whole", "Committee"},
	{"Council", "Council", "Council"},
	{"Advisory Committee", "Advisory Committee", "Advisory Committee"},
	{"Board", "Board", "Board"},
	{"Committee", "Committee", "Committee"},
}

// MapTypeToOrg resolves a raw meeting-type string to the organization
// name/classification it should be filed under.
func MapTypeToOrg(meetingType string) (orgName, classification string) {
	for _, m := range orgClassifications {
		if strings.EqualFold(m.matchType, meetingType) {
			return m.orgName, m.classification
		}
	}
	return "Council", "Council"
}

// GetOrCreateOrganization finds or inserts the named organization for
// this municipality.
func (ig *Ingester) GetOrCreateOrganization(ctx context.Context, name, classification string) (int, error) {
	existing, err := ig.db.Organization.Query().
		Where(organization.NameEQ(name), organization.MunicipalityID(ig.municipalityID)).
		Only(ctx)
	if err == nil {
		return existing.ID, nil
	}
	if !ent.IsNotFound(err) {
		return 0, fmt.Errorf("query organization: %w", err)
	}

	created, err := ig.db.Organization.Create().
		SetName(name).
		SetClassification(organization.Classification(classification)).
		SetMunicipalityID(ig.municipalityID).
		Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("create organization: %w", err)
	}
	return created.ID, nil
}

// GetOrCreatePerson cleans, canonicalizes, and resolves name to a
// person row. Returns 0 (no error) for names that are junk, blocklisted,
// or would-be-new council members (councillors are seeded from election
// data, never created implicitly from meeting transcripts).
func (ig *Ingester) GetOrCreatePerson(ctx context.Context, rawName string) (int, error) {
	if rawName == "" {
		return 0, nil
	}
	if strings.Contains(rawName, "Speaker_") || strings.Contains(rawName, "Unknown") ||
		strings.EqualFold(strings.TrimSpace(rawName), "speaker") {
		return 0, nil
	}

	roles := names.ExtractRoles(rawName)
	cleanName := ig.canon.Canonicalize(rawName)
	if !names.IsValidName(cleanName) {
		return 0, nil
	}

	existing, err := ig.db.Person.Query().Where(person.NameEQ(cleanName)).Only(ctx)
	if err == nil {
		if err := ig.recordMemberships(ctx, existing.ID, roles, false); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}
	if !ent.IsNotFound(err) {
		return 0, fmt.Errorf("query person: %w", err)
	}

	allPeople, err := ig.db.Person.Query().Select(person.FieldID, person.FieldName).All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list people: %w", err)
	}
	existingNames := make(map[int]string, len(allPeople))
	for _, p := range allPeople {
		existingNames[p.ID] = p.Name
	}
	if matchID := names.MatchExisting(cleanName, existingNames); matchID != 0 {
		if err := ig.recordMemberships(ctx, matchID, roles, false); err != nil {
			return 0, err
		}
		return matchID, nil
	}

	isCouncilRelated := false
	for _, r := range roles {
		if r.Organization == "Council" {
			isCouncilRelated = true
			break
		}
	}
	if isCouncilRelated {
		// Council members must come from election seeding, not meeting ingest.
		return 0, nil
	}

	created, err := ig.db.Person.Create().SetName(cleanName).Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("create person: %w", err)
	}
	if err := ig.recordMemberships(ctx, created.ID, roles, true); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// recordMemberships writes one membership row per extracted role, for
// newly created people and for staff roles on existing people (council
// memberships on existing people are assumed already seeded).
func (ig *Ingester) recordMemberships(ctx context.Context, personID int, roles []names.Role, isNew bool) error {
	for _, r := range roles {
		if !isNew && r.Organization != "Staff" {
			continue
		}
		orgID, err := ig.GetOrCreateOrganization(ctx, r.Organization, r.Organization)
		if err != nil {
			return err
		}
		exists, err := ig.db.Membership.Query().
			Where(membership.PersonID(personID), membership.OrganizationID(orgID), membership.RoleEQ(r.Role)).
			Exist(ctx)
		if err != nil {
			return fmt.Errorf("query membership: %w", err)
		}
		if exists {
			continue
		}
		if _, err := ig.db.Membership.Create().
			SetPersonID(personID).
			SetOrganizationID(orgID).
			SetRole(r.Role).
			SetStartDate(time.Now()).
			Save(ctx); err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
	}
	return nil
}

// GetOrCreateMatter resolves identifier/title/relatedAddresses against
// the matter index (§4.9), extending first_seen/last_seen on a match or
// inserting a new matter and registering it write-through so later items
// in the same run see it too.
func (ig *Ingester) GetOrCreateMatter(ctx context.Context, identifier, title string, date time.Time, relatedAddresses []string) (int, error) {
	result := ig.matcher.FindMatch(identifier, title, relatedAddresses)
	if result.Matched() {
		id := *result.MatterID
		if err := ig.extendMatterDates(ctx, id, date); err != nil {
			return 0, err
		}
		return id, nil
	}
	if identifier == "" {
		return 0, nil
	}

	finalIdentifier := identifier
	if idx := strings.Index(identifier, ";"); idx >= 0 {
		finalIdentifier = strings.TrimSpace(identifier[:idx])
	}

	created, err := ig.db.Matter.Create().
		SetTitle(title).
		SetIdentifier(finalIdentifier).
		SetCategory(guessMatterCategory(identifier)).
		SetStatus("Active").
		SetFirstSeen(date).
		SetLastSeen(date).
		SetMunicipalityID(ig.municipalityID).
		Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("create matter: %w", err)
	}
	ig.matcher.RegisterNew(created.ID, identifier, title, relatedAddresses)
	return created.ID, nil
}

// guessMatterCategory classifies a brand-new matter by its identifier
// text, for the matters.category display field (distinct from
// matter.DeriveCategory, which buckets by title keyword for the §4.9
// address+category match stage).
func guessMatterCategory(identifier string) string {
	switch {
	case strings.Contains(identifier, "Bylaw"):
		return "Bylaw"
	case strings.Contains(identifier, "Permit"), strings.Contains(identifier, "DVP"), strings.Contains(identifier, "DP"):
		return "Development"
	default:
		return "General"
	}
}

func (ig *Ingester) extendMatterDates(ctx context.Context, id int, date time.Time) error {
	if date.IsZero() {
		return nil
	}
	m, err := ig.db.Matter.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get matter: %w", err)
	}
	update := ig.db.Matter.UpdateOneID(id)
	changed := false
	if date.Before(m.FirstSeen) {
		update.SetFirstSeen(date)
		changed = true
	}
	if date.After(m.LastSeen) {
		update.SetLastSeen(date)
		changed = true
	}
	if !changed {
		return nil
	}
	if _, err := update.Save(ctx); err != nil {
		return fmt.Errorf("update matter dates: %w", err)
	}
	return nil
}

// matterExists reports whether a matter row with the given id exists,
// without running the full matcher.
func (ig *Ingester) matterExists(ctx context.Context, id int) (bool, error) {
	return ig.db.Matter.Query().Where(matter.ID(id)).Exist(ctx)
}
