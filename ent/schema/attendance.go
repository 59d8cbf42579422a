package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Attendance records how a person attended a meeting.
type Attendance struct {
	ent.Schema
}

func (Attendance) Fields() []ent.Field {
	return []ent.Field{
		field.Int("meeting_id"),
		field.Int("person_id"),
		field.Enum("mode").
			Values("In Person", "Remote", "Absent"),
	}
}

func (Attendance) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("meeting", Meeting.Type).
			Ref("attendances").
			Field("meeting_id").
			Unique().
			Required(),
		edge.From("person", Person.Type).
			Ref("attendances").
			Field("person_id").
			Unique().
			Required(),
	}
}

func (Attendance) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("meeting_id", "person_id").Unique(),
	}
}
