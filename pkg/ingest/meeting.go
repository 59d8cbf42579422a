package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/agendaitem"
	"github.com/viewroyal/civicpipe/ent/attendance"
	"github.com/viewroyal/civicpipe/ent/keystatement"
	"github.com/viewroyal/civicpipe/ent/meeting"
	"github.com/viewroyal/civicpipe/ent/meetingspeakeralias"
	"github.com/viewroyal/civicpipe/ent/motion"
	"github.com/viewroyal/civicpipe/ent/vote"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// statusRank orders meeting status so a re-ingest never downgrades a
// meeting from Occurred/Completed back to Planned (I5).
var statusRank = map[string]int{"Planned": 0, "Occurred": 1, "Completed": 2}

// AttendanceEntry is one row of a meeting's attendance.json.
type AttendanceEntry struct {
	Name     string
	Category string // "present", "regrets", "staff"
	Mode     string // "In Person", "Remote", "Absent"
}

// MeetingInput is the metadata the Acquirer/Scraper/Change Detector have
// already established for one meeting folder, before refinement.
type MeetingInput struct {
	ArchivePath      string
	Title            string
	MeetingDate      time.Time
	MeetingTypeGuess string
	AgendaURL        string
	VideoURL         string
	HasAgenda        bool
	HasMinutes       bool
	HasTranscript    bool
	Attendance       []AttendanceEntry
}

// Result is what IngestMeeting reports back to the orchestrator.
type Result struct {
	MeetingID int
	Status    string
	ItemCount int
}

// IngestMeeting upserts one meeting and its organization, documents,
// attendance, speaker aliases, agenda items, motions, votes, and key
// statements, then runs the geocoding pass over agenda items with a
// related address but no resolved point. refined may be nil for a
// meeting that hasn't been through refinement yet (document/flag
// bookkeeping only).
func (ig *Ingester) IngestMeeting(ctx context.Context, in MeetingInput, refined *models.MeetingRefinement) (*Result, error) {
	meetingTypeGuess := in.MeetingTypeGuess
	if meetingTypeGuess == "" {
		meetingTypeGuess = "Council"
	}
	orgName, classification := MapTypeToOrg(meetingTypeGuess)
	orgID, err := ig.GetOrCreateOrganization(ctx, orgName, classification)
	if err != nil {
		return nil, err
	}

	status := deriveStatus(in.MeetingDate, in.HasMinutes, in.HasTranscript)
	isPlanned := status == "Planned"

	meetingID, prevStatus, err := ig.upsertMeeting(ctx, in, orgID, status)
	if err != nil {
		return nil, err
	}
	status = mergeStatus(prevStatus, status)

	if len(in.Attendance) > 0 && !isPlanned {
		if err := ig.writeAttendance(ctx, meetingID, in.Attendance); err != nil {
			return nil, err
		}
	}

	if refined == nil {
		return &Result{MeetingID: meetingID, Status: status}, nil
	}

	if !isPlanned {
		if err := ig.writeSpeakerAliases(ctx, meetingID, refined.SpeakerAliases); err != nil {
			return nil, err
		}
	}

	if refined.ChairPersonName != "" {
		chairID, err := ig.GetOrCreatePerson(ctx, refined.ChairPersonName)
		if err != nil {
			return nil, err
		}
		if chairID != 0 {
			if err := ig.db.Meeting.UpdateOneID(meetingID).SetChairPersonID(chairID).Exec(ctx); err != nil {
				return nil, fmt.Errorf("set chair person: %w", err)
			}
		}
	}

	itemCount, err := ig.writeAgendaItems(ctx, meetingID, in.MeetingDate, isPlanned, refined)
	if err != nil {
		return nil, err
	}

	if err := ig.geocodeAgendaItems(ctx, meetingID); err != nil {
		return nil, err
	}

	return &Result{MeetingID: meetingID, Status: status, ItemCount: itemCount}, nil
}

// deriveStatus mirrors original_source's date-gated status derivation:
// a meeting in the past is never left at Planned.
func deriveStatus(meetingDate time.Time, hasMinutes, hasTranscript bool) string {
	if meetingDate.After(time.Now()) {
		return "Planned"
	}
	if hasMinutes && hasTranscript {
		return "Completed"
	}
	return "Occurred"
}

func mergeStatus(prev, next string) string {
	if prev == "" {
		return next
	}
	if statusRank[next] >= statusRank[prev] {
		return next
	}
	return prev
}

func (ig *Ingester) upsertMeeting(ctx context.Context, in MeetingInput, orgID int, status string) (id int, prevStatus string, err error) {
	existing, err := ig.db.Meeting.Query().
		Where(meeting.MunicipalityID(ig.municipalityID), meeting.ArchivePathEQ(in.ArchivePath)).
		Only(ctx)
	if err != nil && !ent.IsNotFound(err) {
		return 0, "", fmt.Errorf("query meeting: %w", err)
	}

	if err == nil {
		merged := mergeStatus(string(existing.Status), status)
		update := ig.db.Meeting.UpdateOneID(existing.ID).
			SetOrganizationID(orgID).
			SetTitle(in.Title).
			SetStatus(meeting.Status(merged)).
			SetHasAgenda(in.HasAgenda).
			SetHasMinutes(in.HasMinutes).
			SetHasTranscript(in.HasTranscript)
		if in.VideoURL != "" {
			update.SetVideoURL(in.VideoURL)
		}
		if err := update.Exec(ctx); err != nil {
			return 0, "", fmt.Errorf("update meeting: %w", err)
		}
		return existing.ID, string(existing.Status), nil
	}

	create := ig.db.Meeting.Create().
		SetMunicipalityID(ig.municipalityID).
		SetOrganizationID(orgID).
		SetMeetingDate(in.MeetingDate).
		SetType(in.MeetingTypeGuess).
		SetTitle(in.Title).
		SetArchivePath(in.ArchivePath).
		SetStatus(meeting.Status(status)).
		SetHasAgenda(in.HasAgenda).
		SetHasMinutes(in.HasMinutes).
		SetHasTranscript(in.HasTranscript)
	if in.VideoURL != "" {
		create.SetVideoURL(in.VideoURL)
	}
	created, err := create.Save(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("create meeting: %w", err)
	}
	return created.ID, "", nil
}

func (ig *Ingester) writeAttendance(ctx context.Context, meetingID int, entries []AttendanceEntry) error {
	for _, a := range entries {
		personID, err := ig.GetOrCreatePerson(ctx, a.Name)
		if err != nil {
			return err
		}
		if personID == 0 {
			continue
		}
		mode := a.Mode
		if mode == "" {
			mode = "In Person"
		}
		exists, err := ig.db.Attendance.Query().
			Where(attendance.MeetingID(meetingID), attendance.PersonID(personID)).Exist(ctx)
		if err != nil {
			return fmt.Errorf("query attendance: %w", err)
		}
		if exists {
			continue
		}
		if _, err := ig.db.Attendance.Create().
			SetMeetingID(meetingID).SetPersonID(personID).SetMode(attendance.Mode(mode)).
			Save(ctx); err != nil {
			return fmt.Errorf("create attendance: %w", err)
		}
	}
	return nil
}

func (ig *Ingester) writeSpeakerAliases(ctx context.Context, meetingID int, aliases []models.SpeakerAlias) error {
	for _, alias := range aliases {
		personID, err := ig.GetOrCreatePerson(ctx, alias.Name)
		if err != nil {
			return err
		}
		exists, err := ig.db.MeetingSpeakerAlias.Query().
			Where(meetingspeakeralias.MeetingID(meetingID), meetingspeakeralias.SpeakerLabelEQ(alias.Label)).Exist(ctx)
		if err != nil {
			return fmt.Errorf("query speaker alias: %w", err)
		}
		if exists {
			continue
		}
		create := ig.db.MeetingSpeakerAlias.Create().SetMeetingID(meetingID).SetSpeakerLabel(alias.Label)
		if personID != 0 {
			create = create.SetPersonID(personID)
		}
		if _, err := create.Save(ctx); err != nil {
			return fmt.Errorf("create speaker alias: %w", err)
		}
	}
	return nil
}

// writeAgendaItems replaces all agenda items (and their motions/votes/
// key statements) for a meeting, in votes -> motions -> key_statements ->
// agenda_items delete order to respect foreign keys, then reinserts from
// the fresh refinement.
func (ig *Ingester) writeAgendaItems(ctx context.Context, meetingID int, meetingDate time.Time, isPlanned bool, refined *models.MeetingRefinement) (int, error) {
	if err := ig.clearAgendaItems(ctx, meetingID); err != nil {
		return 0, err
	}

	votingAttendees := councilAttendees(refined.Attendees)

	count := 0
	for _, item := range refined.Items {
		identifier := item.MatterIdentifier
		if identifier == "" {
			identifier = extractIdentifierFromText(item.Title)
		}
		title := item.MatterTitle
		if title == "" {
			title = item.Title
		}
		relatedAddresses := ig.normalizeAddressList(item.RelatedAddress)

		matterID, err := ig.GetOrCreateMatter(ctx, identifier, title, meetingDate, relatedAddresses)
		if err != nil {
			return 0, err
		}

		create := ig.db.AgendaItem.Create().
			SetMeetingID(meetingID).
			SetItemOrder(item.ItemOrder).
			SetTitle(item.Title).
			SetRelatedAddress(relatedAddresses).
			SetIsControversial(item.IsControversial).
			SetKeywords(item.Tags)
		if matterID != 0 {
			create = create.SetMatterID(matterID)
		}
		if item.Description != "" {
			create = create.SetDescription(item.Description)
		}
		if item.Category != "" {
			create = create.SetCategory(item.Category)
		}
		if item.PlainEnglishSummary != "" {
			create = create.SetPlainEnglishSummary(item.PlainEnglishSummary)
		}
		if item.DebateSummary != "" {
			create = create.SetDebateSummary(item.DebateSummary)
		}
		if item.DiscussionStartTime != nil {
			create = create.SetDiscussionStartTime(*item.DiscussionStartTime)
		}
		if item.DiscussionEndTime != nil {
			create = create.SetDiscussionEndTime(*item.DiscussionEndTime)
		}
		if item.FinancialCost != nil {
			create = create.SetFinancialCost(*item.FinancialCost)
		}
		if item.FundingSource != "" {
			create = create.SetFundingSource(item.FundingSource)
		}
		if len(item.KeyQuotes) > 0 {
			create = create.SetMeta(map[string]any{"key_quotes": item.KeyQuotes})
		}

		row, err := create.Save(ctx)
		if err != nil {
			return 0, fmt.Errorf("create agenda item: %w", err)
		}
		count++

		for _, ks := range item.KeyStatements {
			if err := ig.writeKeyStatement(ctx, meetingID, row.ID, ks); err != nil {
				return 0, err
			}
		}

		if isPlanned {
			continue
		}
		itemStart := item.DiscussionStartTime
		for _, mot := range item.Motions {
			if err := ig.writeMotion(ctx, meetingID, row.ID, itemStart, mot, votingAttendees); err != nil {
				return 0, err
			}
		}
	}
	return count, nil
}

func (ig *Ingester) clearAgendaItems(ctx context.Context, meetingID int) error {
	itemIDs, err := ig.db.AgendaItem.Query().Where(agendaitem.MeetingID(meetingID)).IDs(ctx)
	if err != nil {
		return fmt.Errorf("list agenda items: %w", err)
	}
	if len(itemIDs) == 0 {
		return nil
	}

	motionIDs, err := ig.db.Motion.Query().Where(motion.AgendaItemIDIn(itemIDs...)).IDs(ctx)
	if err != nil {
		return fmt.Errorf("list motions: %w", err)
	}
	if len(motionIDs) > 0 {
		if _, err := ig.db.Vote.Delete().Where(vote.MotionIDIn(motionIDs...)).Exec(ctx); err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}
		if _, err := ig.db.Motion.Delete().Where(motion.IDIn(motionIDs...)).Exec(ctx); err != nil {
			return fmt.Errorf("delete motions: %w", err)
		}
	}
	if _, err := ig.db.KeyStatement.Delete().Where(keystatement.AgendaItemIDIn(itemIDs...)).Exec(ctx); err != nil {
		return fmt.Errorf("delete key statements: %w", err)
	}
	if _, err := ig.db.AgendaItem.Delete().Where(agendaitem.IDIn(itemIDs...)).Exec(ctx); err != nil {
		return fmt.Errorf("delete agenda items: %w", err)
	}
	return nil
}

func (ig *Ingester) writeKeyStatement(ctx context.Context, meetingID, agendaItemID int, ks models.KeyStatementRecord) error {
	var personID int
	if ks.Speaker != "" {
		id, err := ig.GetOrCreatePerson(ctx, ks.Speaker)
		if err != nil {
			return err
		}
		personID = id
	}
	speakerName := ks.Speaker
	if speakerName == "" {
		speakerName = "Unknown"
	}
	create := ig.db.KeyStatement.Create().
		SetMeetingID(meetingID).
		SetAgendaItemID(agendaItemID).
		SetSpeakerName(speakerName).
		SetStatementText(ks.StatementText)
	if ks.StatementType != "" {
		create = create.SetStatementType(keystatement.StatementType(ks.StatementType))
	}
	if ks.Context != "" {
		create = create.SetContext(ks.Context)
	}
	if ks.Timestamp != nil {
		create = create.SetStartTime(*ks.Timestamp)
	}
	if personID != 0 {
		create = create.SetPersonID(personID)
	}
	if _, err := create.Save(ctx); err != nil {
		return fmt.Errorf("create key statement: %w", err)
	}
	return nil
}

// suspiciousTimestampFloor is the I3 guard: a motion timestamp under this
// many seconds, on an item that itself starts well after it, is more
// likely a hallucinated decimal (e.g. 1.058 meant as 1:05:46) than a real
// early-meeting motion, so it is dropped rather than trusted.
const suspiciousTimestampFloor = 100.0

func (ig *Ingester) writeMotion(ctx context.Context, meetingID, agendaItemID int, itemStart *float64, mot models.MotionRecord, votingAttendees []string) error {
	finalTS := mot.Timestamp
	if itemStart != nil && *itemStart > suspiciousTimestampFloor &&
		finalTS != nil && *finalTS < suspiciousTimestampFloor {
		finalTS = nil
	}

	var moverID, seconderID int
	if mot.Mover != "" {
		id, err := ig.GetOrCreatePerson(ctx, mot.Mover)
		if err != nil {
			return err
		}
		moverID = id
	}
	if mot.Seconder != "" {
		id, err := ig.GetOrCreatePerson(ctx, mot.Seconder)
		if err != nil {
			return err
		}
		seconderID = id
	}

	create := ig.db.Motion.Create().
		SetMeetingID(meetingID).
		SetAgendaItemID(agendaItemID).
		SetTextContent(mot.MotionText).
		SetResult(motion.Result(mot.Result))
	if mot.Mover != "" {
		create = create.SetMover(mot.Mover)
	}
	if mot.Seconder != "" {
		create = create.SetSeconder(mot.Seconder)
	}
	if moverID != 0 {
		create = create.SetMoverID(moverID)
	}
	if seconderID != 0 {
		create = create.SetSeconderID(seconderID)
	}
	if mot.PlainEnglishSummary != "" {
		create = create.SetPlainEnglishSummary(mot.PlainEnglishSummary)
	}
	if mot.Disposition != "" {
		create = create.SetDisposition(motion.Disposition(mot.Disposition))
	}
	if finalTS != nil {
		create = create.SetTimeOffsetSeconds(*finalTS)
	}
	if mot.FinancialCost != nil {
		create = create.SetFinancialCost(*mot.FinancialCost)
	}
	if mot.FundingSource != "" {
		create = create.SetFundingSource(mot.FundingSource)
	}

	row, err := create.Save(ctx)
	if err != nil {
		return fmt.Errorf("create motion: %w", err)
	}

	return ig.writeVotes(ctx, row.ID, mot, votingAttendees)
}

// councilAttendees narrows a meeting's attendee list to the names that
// imply a voting member, by the same "Mayor"/"Councillor" substring test
// as the original — attendance rows are plain free text, not yet
// resolved to people, so this is a text heuristic rather than a role
// lookup.
func councilAttendees(attendees []string) []string {
	var out []string
	for _, a := range attendees {
		if strings.Contains(a, "Mayor") || strings.Contains(a, "Councillor") || strings.Contains(a, "Councilor") {
			out = append(out, a)
		}
	}
	return out
}

// writeVotes records the refiner's vote list, and — for a CARRIED
// motion — fills in an implied "Yes" for any attending councillor the
// refiner didn't explicitly record, matching the original's assumption
// that an unrecorded councillor on a carried motion voted with the
// majority.
func (ig *Ingester) writeVotes(ctx context.Context, motionID int, mot models.MotionRecord, votingAttendees []string) error {
	records := append([]models.VoteRecord{}, mot.Votes...)
	if mot.Result == "CARRIED" {
		recorded := make(map[string]struct{}, len(records))
		for _, v := range records {
			recorded[v.PersonName] = struct{}{}
		}
		for _, attendee := range votingAttendees {
			if _, ok := recorded[attendee]; !ok {
				records = append(records, models.VoteRecord{PersonName: attendee, Vote: "Yes"})
			}
		}
	}
	for _, v := range records {
		personID, err := ig.GetOrCreatePerson(ctx, v.PersonName)
		if err != nil {
			return err
		}
		if personID == 0 {
			continue
		}
		if _, err := ig.db.Vote.Create().
			SetMotionID(motionID).SetPersonID(personID).SetVote(vote.Vote(v.Vote)).
			SetNillableRecusalReason(nilIfEmpty(v.Reason)).
			Save(ctx); err != nil {
			return fmt.Errorf("create vote: %w", err)
		}
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// geocodeAgendaItems resolves the first related address of every agenda
// item in a meeting that doesn't already have a geo point, rate-limited
// by ig.geocoder.
func (ig *Ingester) geocodeAgendaItems(ctx context.Context, meetingID int) error {
	if ig.geocoder == nil {
		return nil
	}
	items, err := ig.db.AgendaItem.Query().Where(agendaitem.MeetingID(meetingID)).All(ctx)
	if err != nil {
		return fmt.Errorf("list agenda items for geocoding: %w", err)
	}
	for _, it := range items {
		if it.Geo != nil || len(it.RelatedAddress) == 0 {
			continue
		}
		point, err := ig.geocoder.Geocode(ctx, it.RelatedAddress[0])
		if err != nil {
			return fmt.Errorf("geocode %q: %w", it.RelatedAddress[0], err)
		}
		if point == nil {
			continue
		}
		wkt := point.ToWKT()
		if err := ig.db.AgendaItem.UpdateOneID(it.ID).SetGeo(wkt).Exec(ctx); err != nil {
			return fmt.Errorf("set geo: %w", err)
		}
	}
	return nil
}

func (ig *Ingester) normalizeAddressList(addrs []string) []string {
	var out []string
	for _, a := range addrs {
		out = append(out, normalizeOneAddress(a)...)
	}
	return out
}

func normalizeOneAddress(raw string) []string {
	if raw == "" {
		return nil
	}
	return expandAddress(raw)
}
