package diarizer

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/pgvector/pgvector-go"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// knownFingerprint is one enrolled voice sample joined to its person.
type knownFingerprint struct {
	id         int
	personID   int
	personName string
	embedding  []float32
}

// loadKnownFingerprints reads every enrolled voice_fingerprints row via the
// raw-SQL surface (pgvector has no ent field type — see
// pkg/database.Client.DB's doc comment), joined to people for display
// names. A nil db (no store configured, matching the original's
// supabase_client=None path) yields no known speakers rather than an error.
func loadKnownFingerprints(ctx context.Context, db *sql.DB) ([]knownFingerprint, error) {
	if db == nil {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT vf.id, vf.person_id, p.name, vf.embedding
		FROM voice_fingerprints vf
		JOIN people p ON p.id = vf.person_id
		WHERE vf.embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("query voice_fingerprints: %w", err)
	}
	defer rows.Close()

	var known []knownFingerprint
	for rows.Next() {
		var (
			fp  knownFingerprint
			vec pgvector.Vector
		)
		if err := rows.Scan(&fp.id, &fp.personID, &fp.personName, &vec); err != nil {
			return nil, fmt.Errorf("scan voice_fingerprints row: %w", err)
		}
		fp.embedding = vec.Slice()
		known = append(known, fp)
	}
	return known, rows.Err()
}

// matchSpeakerToKnown finds the known fingerprint with the highest cosine
// similarity to centroid, returning nil if nothing clears threshold.
func matchSpeakerToKnown(centroid []float32, known []knownFingerprint, threshold float64) *models.FingerprintMatch {
	var best *models.FingerprintMatch
	bestSimilarity := threshold

	for _, fp := range known {
		similarity := cosineSimilarity(centroid, fp.embedding)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = &models.FingerprintMatch{
				PersonID:      fp.personID,
				PersonName:    fp.personName,
				Similarity:    similarity,
				FingerprintID: fp.id,
			}
		}
	}
	return best
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SaveSpeakerFingerprint enrolls a new voice sample for a person — the
// operator-driven counterpart to the read path above, invoked once a human
// has confirmed which Speaker_N label in a transcript belongs to whom.
func SaveSpeakerFingerprint(ctx context.Context, db *sql.DB, personID int, centroid []float32, sourceMeetingID *int) (int, error) {
	var fingerprintID int
	err := db.QueryRowContext(ctx, `
		INSERT INTO voice_fingerprints (person_id, source_meeting_id, embedding)
		VALUES ($1, $2, $3)
		RETURNING id
	`, personID, sourceMeetingID, pgvector.NewVector(centroid)).Scan(&fingerprintID)
	if err != nil {
		return 0, fmt.Errorf("insert voice_fingerprints: %w", err)
	}

	if _, err := db.ExecContext(ctx, `UPDATE people SET voice_fingerprint_id = $1 WHERE id = $2`, fingerprintID, personID); err != nil {
		return 0, fmt.Errorf("update people.voice_fingerprint_id: %w", err)
	}

	return fingerprintID, nil
}
