// internal/app/system/limits/limits.go
package limits

// Portal-wide enrollment and review limits.
const (
	// RequiredDepartments is the number of departments an ordinary
	// member must select to complete onboarding. Once a member's
	// selection reaches this count it is locked; only admins may
	// change it afterwards.
	RequiredDepartments = 2

	// MaxDepartmentsPerUser bounds any selection, including ones made
	// by admins on a member's behalf.
	MaxDepartmentsPerUser = 2

	// ProjectMemberLimit is the fixed number of seats on a project team.
	ProjectMemberLimit = 4

	// DefaultContributionPoints is awarded when an admin verifies a
	// contribution without supplying a point value.
	DefaultContributionPoints = 5

	// MaxContributionPoints caps a single award.
	MaxContributionPoints = 100

	// MaxContributionTextLen bounds contribution text after sanitizing.
	MaxContributionTextLen = 4000

	// MaxJSONBodySize is the request body cap for the JSON API.
	MaxJSONBodySize = 1 << 20 // 1 MB
)
