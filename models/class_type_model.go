package models

// ClassType is an admin-owned definition that classes reference by id.
// Deletion is refused at the application layer while any class still
// references it; the store has no foreign keys.
type ClassType struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	IsActive    bool     `json:"isActive"`
}
