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

// DependencyServiceTestSuite defines the test suite for DependencyService
type DependencyServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	taskRepo repository.TaskRepository
	depRepo  repository.DependencyRepository
	service  *DependencyService
}

// SetupTest runs before each test
func (suite *DependencyServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Column{},
		&models.Task{},
		&models.TaskDependency{},
		&models.Subtask{},
		&models.TaskTag{},
		&models.Estimate{},
		&models.TimeEntry{},
		&models.HistoryEntry{},
	)
	suite.Require().NoError(err)

	suite.taskRepo = repository.NewTaskRepository(suite.db)
	suite.depRepo = repository.NewDependencyRepository(suite.db)
	historyRepo := repository.NewHistoryRepository(suite.db)

	suite.service = NewDependencyService(suite.depRepo, suite.taskRepo, NewHistoryRecorder(historyRepo), LogNotifier{})
}

// TearDownTest runs after each test
func (suite *DependencyServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *DependencyServiceTestSuite) createTask(projectID uint64, text string) *models.Task {
	task := &models.Task{
		ProjectID: projectID,
		Column:    "todo",
		Text:      text,
		Status:    "todo",
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
	}
	suite.db.Create(task)
	return task
}

func (suite *DependencyServiceTestSuite) createProject(name string) *models.Project {
	project := &models.Project{Name: name, InviteCode: name + "-CODE", CreatedBy: 1}
	suite.db.Create(project)
	return project
}

func (suite *DependencyServiceTestSuite) addEdge(from, to uint64, depType models.DependencyType) *models.TaskDependency {
	dep, err := suite.service.AddDependency(manager(1), AddDependencyInput{
		TaskID:          from,
		DependentTaskID: to,
		Type:            depType,
	})
	suite.Require().NoError(err)
	return dep
}

func (suite *DependencyServiceTestSuite) edgeCount() int64 {
	var count int64
	suite.db.Model(&models.TaskDependency{}).Count(&count)
	return count
}

func (suite *DependencyServiceTestSuite) TestAddDependency_DirectCycleRejected() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	suite.addEdge(a.ID, b.ID, models.DependencyBlocks)

	_, err := suite.service.AddDependency(manager(1), AddDependencyInput{
		TaskID:          b.ID,
		DependentTaskID: a.ID,
		Type:            models.DependencyBlocks,
	})

	assert.ErrorIs(suite.T(), err, ErrDependencyCycle)
	assert.Equal(suite.T(), int64(1), suite.edgeCount())
}

func (suite *DependencyServiceTestSuite) TestAddDependency_TransitiveCycleRejected() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")
	c := suite.createTask(project.ID, "C")

	suite.addEdge(a.ID, b.ID, models.DependencyBlocks)
	suite.addEdge(b.ID, c.ID, models.DependencyBlockedBy)

	_, err := suite.service.AddDependency(manager(1), AddDependencyInput{
		TaskID:          c.ID,
		DependentTaskID: a.ID,
		Type:            models.DependencyBlocks,
	})

	assert.ErrorIs(suite.T(), err, ErrDependencyCycle)
	assert.Equal(suite.T(), int64(2), suite.edgeCount())
}

func (suite *DependencyServiceTestSuite) TestAddDependency_RelatesToExemptFromAcyclicity() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	suite.addEdge(a.ID, b.ID, models.DependencyRelatesTo)
	suite.addEdge(b.ID, a.ID, models.DependencyRelatesTo)

	assert.Equal(suite.T(), int64(2), suite.edgeCount())
}

func (suite *DependencyServiceTestSuite) TestAddDependency_RelatesToDoesNotBlockOrdering() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	// A relates_to B must not make B blocks A cyclic.
	suite.addEdge(a.ID, b.ID, models.DependencyRelatesTo)
	suite.addEdge(b.ID, a.ID, models.DependencyBlocks)

	assert.Equal(suite.T(), int64(2), suite.edgeCount())
}

func (suite *DependencyServiceTestSuite) TestAddDependency_DuplicateRejected() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	suite.addEdge(a.ID, b.ID, models.DependencyBlocks)

	_, err := suite.service.AddDependency(manager(1), AddDependencyInput{
		TaskID:          a.ID,
		DependentTaskID: b.ID,
		Type:            models.DependencyBlocks,
	})

	assert.ErrorIs(suite.T(), err, ErrDuplicateDependency)
}

func (suite *DependencyServiceTestSuite) TestAddDependency_SelfRejected() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")

	_, err := suite.service.AddDependency(manager(1), AddDependencyInput{
		TaskID:          a.ID,
		DependentTaskID: a.ID,
		Type:            models.DependencyBlocks,
	})

	assert.ErrorIs(suite.T(), err, ErrSelfDependency)
}

func (suite *DependencyServiceTestSuite) TestAddDependency_CrossProjectRejected() {
	projectA := suite.createProject("BoardA")
	projectB := suite.createProject("BoardB")
	a := suite.createTask(projectA.ID, "A")
	b := suite.createTask(projectB.ID, "B")

	_, err := suite.service.AddDependency(manager(1), AddDependencyInput{
		TaskID:          a.ID,
		DependentTaskID: b.ID,
		Type:            models.DependencyBlocks,
	})

	assert.ErrorIs(suite.T(), err, ErrCrossProjectDependency)
}

func (suite *DependencyServiceTestSuite) TestAddDependency_MemberDenied() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	_, err := suite.service.AddDependency(member(2), AddDependencyInput{
		TaskID:          a.ID,
		DependentTaskID: b.ID,
		Type:            models.DependencyBlocks,
	})

	assert.ErrorIs(suite.T(), err, ErrManagerRequired)
}

func (suite *DependencyServiceTestSuite) TestListDependencies_OmitsDanglingTargets() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")
	c := suite.createTask(project.ID, "C")

	suite.addEdge(a.ID, b.ID, models.DependencyBlocks)
	suite.addEdge(a.ID, c.ID, models.DependencyRelatesTo)

	// Deleting B leaves A's edge to it dangling.
	suite.Require().NoError(suite.taskRepo.Delete(b.ID))

	deps, err := suite.service.ListDependencies(a.ID)
	suite.Require().NoError(err)

	suite.Require().Len(deps, 1)
	assert.Equal(suite.T(), c.ID, deps[0].DependentTaskID)
	suite.Require().NotNil(deps[0].DependentTask)
	assert.Equal(suite.T(), "C", deps[0].DependentTask.Text)

	// The raw edge is still stored, only the read path hides it.
	var count int64
	suite.db.Model(&models.TaskDependency{}).Where("task_id = ?", a.ID).Count(&count)
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *DependencyServiceTestSuite) TestDeleteDependency_ReopensPath() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	dep := suite.addEdge(a.ID, b.ID, models.DependencyBlocks)

	suite.Require().NoError(suite.service.DeleteDependency(manager(1), dep.ID))

	// With the edge gone the reverse direction is acyclic again.
	suite.addEdge(b.ID, a.ID, models.DependencyBlocks)
	assert.Equal(suite.T(), int64(1), suite.edgeCount())
}

func (suite *DependencyServiceTestSuite) TestDeleteDependency_MemberDenied() {
	project := suite.createProject("Board")
	a := suite.createTask(project.ID, "A")
	b := suite.createTask(project.ID, "B")

	dep := suite.addEdge(a.ID, b.ID, models.DependencyBlocks)

	err := suite.service.DeleteDependency(member(2), dep.ID)
	assert.ErrorIs(suite.T(), err, ErrManagerRequired)
}

func TestDependencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DependencyServiceTestSuite))
}
