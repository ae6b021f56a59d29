package models

// InviteCollaboratorRequest is the payload a student sends to share access.
type InviteCollaboratorRequest struct {
	Email        string                      `json:"email"`
	Name         string                      `json:"name,omitempty"`
	Relationship Relationship                `json:"relationship"`
	Permissions  *CollaboratorPermissionsDTO `json:"permissions,omitempty"`
	Note         string                      `json:"note,omitempty"`
}

// UpdateCollaboratorRequest carries partial edits to an existing link.
// Which fields an actor may set depends on which side of the link they are.
type UpdateCollaboratorRequest struct {
	Permissions *CollaboratorPermissionsDTO `json:"permissions,omitempty"`
	Note        *string                     `json:"note,omitempty"`
	Status      *LinkStatus                 `json:"status,omitempty"`
}

// CollaboratorLinkView joins a link with the counterpart's user record for
// listing endpoints.
type CollaboratorLinkView struct {
	Link *CollaboratorLink `json:"link"`
	User *User             `json:"user,omitempty"`
}

type CreateTaskRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	CollegeID       string     `json:"collegeId,omitempty"`
	Status          TaskStatus `json:"status,omitempty"`
	DueAt           int        `json:"dueAt,omitempty"`
	RemindBeforeSec int        `json:"remindBeforeSec,omitempty"`
}

type UpdateTaskRequest struct {
	Title           *string     `json:"title,omitempty"`
	Description     *string     `json:"description,omitempty"`
	CollegeID       *string     `json:"collegeId,omitempty"`
	Status          *TaskStatus `json:"status,omitempty"`
	DueAt           *int        `json:"dueAt,omitempty"`
	RemindBeforeSec *int        `json:"remindBeforeSec,omitempty"`
}

type CreateCollegeRequest struct {
	Name            string        `json:"name"`
	Location        string        `json:"location,omitempty"`
	ApplicationType string        `json:"applicationType,omitempty"`
	Deadline        int           `json:"deadline,omitempty"`
	Status          CollegeStatus `json:"status,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Financial       *CollegeCosts `json:"financial,omitempty"`
}

type UpdateCollegeRequest struct {
	Name            *string        `json:"name,omitempty"`
	Location        *string        `json:"location,omitempty"`
	ApplicationType *string        `json:"applicationType,omitempty"`
	Deadline        *int           `json:"deadline,omitempty"`
	Status          *CollegeStatus `json:"status,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
	Financial       *CollegeCosts  `json:"financial,omitempty"`
}

type CreateEssayRequest struct {
	Prompt    string `json:"prompt"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	CollegeID string `json:"collegeId,omitempty"`
	WordLimit int    `json:"wordLimit,omitempty"`
}

type UpdateEssayRequest struct {
	Prompt    *string      `json:"prompt,omitempty"`
	Title     *string      `json:"title,omitempty"`
	Content   *string      `json:"content,omitempty"`
	CollegeID *string      `json:"collegeId,omitempty"`
	WordLimit *int         `json:"wordLimit,omitempty"`
	Status    *EssayStatus `json:"status,omitempty"`
}

type CreateActivityRequest struct {
	Kind         string `json:"kind,omitempty"`
	Title        string `json:"title"`
	Role         string `json:"role,omitempty"`
	Description  string `json:"description,omitempty"`
	YearsActive  []int  `json:"yearsActive,omitempty"`
	HoursPerWeek int    `json:"hoursPerWeek,omitempty"`
	Level        string `json:"level,omitempty"`
}

type UpdateActivityRequest struct {
	Title        *string `json:"title,omitempty"`
	Role         *string `json:"role,omitempty"`
	Description  *string `json:"description,omitempty"`
	YearsActive  []int   `json:"yearsActive,omitempty"`
	HoursPerWeek *int    `json:"hoursPerWeek,omitempty"`
	Level        *string `json:"level,omitempty"`
}

type SwitchContextRequest struct {
	StudentID string `json:"studentId"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name,omitempty"`
	GraduationYear *int    `json:"graduationYear,omitempty"`
}
