package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionExamsRead allows viewing exams and their codes.
	PermissionExamsRead Permission = "exams:read"

	// PermissionExamsWrite allows creating exams and changing their questions.
	PermissionExamsWrite Permission = "exams:write"

	// PermissionExamCodesWrite allows generating and deleting exam codes.
	PermissionExamCodesWrite Permission = "exam_codes:write"

	// PermissionGroupsWrite allows creating classes and rooms.
	PermissionGroupsWrite Permission = "groups:write"

	// PermissionAssignmentsWrite allows assigning exams to classes and rooms.
	PermissionAssignmentsWrite Permission = "assignments:write"

	// PermissionResultsRead allows listing and exporting exam results.
	PermissionResultsRead Permission = "results:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionExamsRead,
	PermissionExamsWrite,
	PermissionExamCodesWrite,
	PermissionGroupsWrite,
	PermissionAssignmentsWrite,
	PermissionResultsRead,
}
