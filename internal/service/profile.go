package service

import "github.com/noah-isme/internship-api/internal/models"

// Profile is the role-specific record attached to a user. The set of implementations is closed:
// StudentProfile, HODProfile and SupervisorProfile. Administrators have no profile.
type Profile interface {
	Role() models.Role
	profile()
}

// StudentProfile wraps the students row of a student identity.
type StudentProfile struct {
	models.Student
}

// HODProfile wraps the hods row of a head of department.
type HODProfile struct {
	models.HOD
}

// SupervisorProfile wraps the organization_supervisors row of a supervisor.
type SupervisorProfile struct {
	models.OrganizationSupervisor
}

func (StudentProfile) Role() models.Role    { return models.RoleStudent }
func (HODProfile) Role() models.Role        { return models.RoleHOD }
func (SupervisorProfile) Role() models.Role { return models.RoleSupervisor }

func (StudentProfile) profile()    {}
func (HODProfile) profile()        {}
func (SupervisorProfile) profile() {}
