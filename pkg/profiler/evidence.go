package profiler

import (
	"context"
	"fmt"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/agendaitem"
	"github.com/viewroyal/civicpipe/ent/keystatement"
	"github.com/viewroyal/civicpipe/ent/meeting"
	"github.com/viewroyal/civicpipe/ent/motion"
	"github.com/viewroyal/civicpipe/ent/vote"
)

// keyStatementEvidence is one statement offered as evidence for a
// person's stance on a topic.
type keyStatementEvidence struct {
	text            string
	meetingDate     string
	agendaItemTitle string
}

// voteEvidence is one vote offered as evidence.
type voteEvidence struct {
	vote        string
	motionText  string
	result      string
	meetingDate string
}

// evidence is everything gathered for one (person, topic) pair.
type evidence struct {
	keyStatements  []keyStatementEvidence
	votes          []voteEvidence
	statementCount int
}

// gatherEvidence ports _gather_evidence: every key_statement and vote
// this person is tied to, filtered down to the ones whose agenda item's
// category normalizes to topic, trimmed to maxKeyStatements/maxVotes.
func gatherEvidence(ctx context.Context, db *ent.Client, personID int, topic string, maxKeyStatements, maxVotes int) (evidence, error) {
	var ev evidence

	statements, err := db.KeyStatement.Query().
		Where(keystatement.PersonID(personID), keystatement.AgendaItemIDNotNil()).
		All(ctx)
	if err != nil {
		return ev, fmt.Errorf("query key_statements for person %d: %w", personID, err)
	}

	itemIDs := make([]int, 0, len(statements))
	meetingIDs := make([]int, 0, len(statements))
	for _, s := range statements {
		itemIDs = append(itemIDs, *s.AgendaItemID)
		meetingIDs = append(meetingIDs, s.MeetingID)
	}
	items, err := loadAgendaItemsByID(ctx, db, itemIDs)
	if err != nil {
		return ev, err
	}
	meetingDates, err := loadMeetingDatesByID(ctx, db, meetingIDs)
	if err != nil {
		return ev, err
	}

	for _, s := range statements {
		item, ok := items[*s.AgendaItemID]
		if !ok || normalizeCategoryToTopic(derefStr(item.Category)) != topic {
			continue
		}
		if len(ev.keyStatements) >= maxKeyStatements {
			break
		}
		ev.keyStatements = append(ev.keyStatements, keyStatementEvidence{
			text:            s.StatementText,
			meetingDate:     meetingDates[s.MeetingID],
			agendaItemTitle: item.Title,
		})
	}

	votes, err := db.Vote.Query().Where(vote.PersonID(personID)).All(ctx)
	if err != nil {
		return ev, fmt.Errorf("query votes for person %d: %w", personID, err)
	}
	motionIDs := make([]int, 0, len(votes))
	for _, v := range votes {
		motionIDs = append(motionIDs, v.MotionID)
	}
	motions, err := loadMotionsByID(ctx, db, motionIDs)
	if err != nil {
		return ev, err
	}

	motionItemIDs := make([]int, 0, len(motions))
	motionMeetingIDs := make([]int, 0, len(motions))
	for _, m := range motions {
		motionItemIDs = append(motionItemIDs, m.AgendaItemID)
		motionMeetingIDs = append(motionMeetingIDs, m.MeetingID)
	}
	motionItems, err := loadAgendaItemsByID(ctx, db, motionItemIDs)
	if err != nil {
		return ev, err
	}
	motionMeetingDates, err := loadMeetingDatesByID(ctx, db, motionMeetingIDs)
	if err != nil {
		return ev, err
	}

	for _, v := range votes {
		m, ok := motions[v.MotionID]
		if !ok {
			continue
		}
		item, ok := motionItems[m.AgendaItemID]
		if !ok || normalizeCategoryToTopic(derefStr(item.Category)) != topic {
			continue
		}
		if len(ev.votes) >= maxVotes {
			break
		}
		ev.votes = append(ev.votes, voteEvidence{
			vote:        string(v.Vote),
			motionText:  m.TextContent,
			result:      string(m.Result),
			meetingDate: motionMeetingDates[m.MeetingID],
		})
	}

	ev.statementCount = len(ev.keyStatements) + len(ev.votes)
	return ev, nil
}

func loadAgendaItemsByID(ctx context.Context, db *ent.Client, ids []int) (map[int]*ent.AgendaItem, error) {
	if len(ids) == 0 {
		return map[int]*ent.AgendaItem{}, nil
	}
	rows, err := db.AgendaItem.Query().Where(agendaitem.IDIn(ids...)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query agenda_items: %w", err)
	}
	out := make(map[int]*ent.AgendaItem, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

func loadMotionsByID(ctx context.Context, db *ent.Client, ids []int) (map[int]*ent.Motion, error) {
	if len(ids) == 0 {
		return map[int]*ent.Motion{}, nil
	}
	rows, err := db.Motion.Query().Where(motion.IDIn(ids...)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query motions: %w", err)
	}
	out := make(map[int]*ent.Motion, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

func loadMeetingDatesByID(ctx context.Context, db *ent.Client, ids []int) (map[int]string, error) {
	if len(ids) == 0 {
		return map[int]string{}, nil
	}
	rows, err := db.Meeting.Query().Where(meeting.IDIn(ids...)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	out := make(map[int]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.MeetingDate.Format("2006-01-02")
	}
	return out, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
