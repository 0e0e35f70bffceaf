package services

import (
	"testing"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectServiceTestSuite defines the test suite for ProjectService
type ProjectServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProjectService
}

// SetupTest runs before each test
func (suite *ProjectServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Column{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	suite.service = NewProjectService(
		repository.NewProjectRepository(suite.db),
		repository.NewColumnRepository(suite.db),
	)
}

// TearDownTest runs after each test
func (suite *ProjectServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectServiceTestSuite) TestCreateProject_SeedsBoardAndManager() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Website", CreatorID: 1})
	suite.Require().NoError(err)
	assert.NotEmpty(suite.T(), project.InviteCode)

	var columns []models.Column
	suite.db.Where("project_id = ?", project.ID).Order("sort_order ASC").Find(&columns)
	suite.Require().Len(columns, 5)
	assert.Equal(suite.T(), "backlog", columns[0].Name)
	assert.Equal(suite.T(), "done", columns[4].Name)

	var memberRecord models.ProjectMember
	err = suite.db.Where("project_id = ? AND user_id = ?", project.ID, 1).First(&memberRecord).Error
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RoleManager, memberRecord.Role)
}

func (suite *ProjectServiceTestSuite) TestJoinProject_ByInviteCode() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Website", CreatorID: 1})
	suite.Require().NoError(err)

	joined, err := suite.service.JoinProject(2, project.InviteCode)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), project.ID, joined.ID)

	var memberRecord models.ProjectMember
	err = suite.db.Where("project_id = ? AND user_id = ?", project.ID, 2).First(&memberRecord).Error
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RoleMember, memberRecord.Role)
}

func (suite *ProjectServiceTestSuite) TestJoinProject_TwiceRejected() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Website", CreatorID: 1})
	suite.Require().NoError(err)

	_, err = suite.service.JoinProject(2, project.InviteCode)
	suite.Require().NoError(err)

	_, err = suite.service.JoinProject(2, project.InviteCode)
	assert.ErrorIs(suite.T(), err, ErrAlreadyProjectMember)
}

func (suite *ProjectServiceTestSuite) TestJoinProject_InvalidCode() {
	_, err := suite.service.JoinProject(2, "NOPE-NOPE-NOPE")
	assert.ErrorIs(suite.T(), err, ErrInvalidInviteCode)
}

func (suite *ProjectServiceTestSuite) TestDeleteProject_BlockedWhileTasksRemain() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Website", CreatorID: 1})
	suite.Require().NoError(err)

	suite.db.Create(&models.Task{
		ProjectID: project.ID,
		Column:    "todo",
		Text:      "Remaining work",
		Status:    "todo",
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
	})

	err = suite.service.DeleteProject(manager(1), project.ID)
	assert.ErrorIs(suite.T(), err, ErrProjectNotEmpty)
}

func (suite *ProjectServiceTestSuite) TestRemoveMember_CannotRemoveYourself() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Website", CreatorID: 1})
	suite.Require().NoError(err)

	err = suite.service.RemoveMember(manager(1), project.ID, 1)
	assert.ErrorIs(suite.T(), err, ErrCannotRemoveYourself)
}

func (suite *ProjectServiceTestSuite) TestRegenerateInviteCode_RotatesCode() {
	project, err := suite.service.CreateProject(CreateProjectInput{Name: "Website", CreatorID: 1})
	suite.Require().NoError(err)
	oldCode := project.InviteCode

	updated, err := suite.service.RegenerateInviteCode(manager(1), project.ID)
	suite.Require().NoError(err)
	assert.NotEqual(suite.T(), oldCode, updated.InviteCode)
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
