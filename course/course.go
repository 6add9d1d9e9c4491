// Package course holds the course model and the filter set used to query it.
package course

// Ref is a category reference embedded in a course.
type Ref struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Course is one result item.
type Course struct {
	ID         string         `json:"id" bson:"_id"`
	Name       string         `json:"nomeCorso" bson:"nomeCorso"`
	Discipline Ref            `json:"discipline" bson:"discipline"`
	Location   Ref            `json:"location" bson:"location"`
	University Ref            `json:"university" bson:"university"`
	Attributes map[string]any `json:"attributes,omitempty" bson:",inline"`
}

// IDs returns the identifiers of courses in order.
func IDs(items []Course) []string {
	ids := make([]string, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	return ids
}
