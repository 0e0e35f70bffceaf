package services

import (
	"testing"
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// StatisticsServiceTestSuite defines the test suite for StatisticsService
type StatisticsServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	timeService *TimeService
	service     *StatisticsService
}

// SetupTest runs before each test
func (suite *StatisticsServiceTestSuite) SetupTest() {
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

	taskRepo := repository.NewTaskRepository(suite.db)
	subtaskRepo := repository.NewSubtaskRepository(suite.db)
	depRepo := repository.NewDependencyRepository(suite.db)
	timeRepo := repository.NewTimeRepository(suite.db)
	historyRepo := repository.NewHistoryRepository(suite.db)

	suite.timeService = NewTimeService(timeRepo, taskRepo, NewHistoryRecorder(historyRepo))
	suite.service = NewStatisticsService(taskRepo, subtaskRepo, depRepo, timeRepo, historyRepo)
}

// TearDownTest runs after each test
func (suite *StatisticsServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *StatisticsServiceTestSuite) createTask(projectID uint64, column, status string) *models.Task {
	task := &models.Task{
		ProjectID: projectID,
		Column:    column,
		Text:      "Task in " + column,
		Status:    status,
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
	}
	suite.db.Create(task)
	return task
}

func (suite *StatisticsServiceTestSuite) TestTaskStatistics_TimeVariance() {
	task := suite.createTask(1, "todo", "todo")

	_, err := suite.timeService.AddEstimate(member(1), AddEstimateInput{TaskID: task.ID, EstimatedHours: 8})
	suite.Require().NoError(err)
	_, _, err = suite.timeService.AddTimeEntry(member(1), AddTimeEntryInput{TaskID: task.ID, Hours: 3})
	suite.Require().NoError(err)
	_, _, err = suite.timeService.AddTimeEntry(member(2), AddTimeEntryInput{TaskID: task.ID, Hours: 4})
	suite.Require().NoError(err)

	stats, err := suite.service.TaskStatistics(task.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 8.0, stats.TimeTracking.EstimatedHours)
	assert.Equal(suite.T(), 7.0, stats.TimeTracking.TotalHoursSpent)
	suite.Require().NotNil(stats.TimeTracking.TimeVariance)
	assert.InDelta(suite.T(), -12.5, *stats.TimeTracking.TimeVariance, 0.0001)
	assert.Equal(suite.T(), 3.0, stats.TimeTracking.TimeEntriesByUser[1])
	assert.Equal(suite.T(), 4.0, stats.TimeTracking.TimeEntriesByUser[2])
}

func (suite *StatisticsServiceTestSuite) TestTaskStatistics_NoEstimateNilVariance() {
	task := suite.createTask(1, "todo", "todo")

	_, _, err := suite.timeService.AddTimeEntry(member(1), AddTimeEntryInput{TaskID: task.ID, Hours: 5})
	suite.Require().NoError(err)

	stats, err := suite.service.TaskStatistics(task.ID)
	suite.Require().NoError(err)

	assert.Nil(suite.T(), stats.TimeTracking.TimeVariance)
	assert.Equal(suite.T(), 5.0, stats.TimeTracking.TotalHoursSpent)
}

func (suite *StatisticsServiceTestSuite) TestTaskStatistics_SubtaskProgress() {
	task := suite.createTask(1, "todo", "todo")

	for i := 0; i < 4; i++ {
		suite.db.Create(&models.Subtask{TaskID: task.ID, Text: "step", Completed: i < 3})
	}

	stats, err := suite.service.TaskStatistics(task.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(4), stats.Subtasks.Total)
	assert.Equal(suite.T(), int64(3), stats.Subtasks.Completed)
	assert.InDelta(suite.T(), 75.0, stats.Subtasks.Progress, 0.0001)
}

func (suite *StatisticsServiceTestSuite) TestTaskStatistics_NoSubtasksProgressFollowsStatus() {
	doneTask := suite.createTask(1, "done", "done")
	openTask := suite.createTask(1, "todo", "todo")

	stats, err := suite.service.TaskStatistics(doneTask.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 100.0, stats.Subtasks.Progress)

	stats, err = suite.service.TaskStatistics(openTask.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0.0, stats.Subtasks.Progress)
}

func (suite *StatisticsServiceTestSuite) TestTaskStatistics_DependencyCounts() {
	task := suite.createTask(1, "todo", "todo")
	other := suite.createTask(1, "todo", "todo")

	suite.db.Create(&models.TaskDependency{TaskID: task.ID, DependentTaskID: other.ID, Type: models.DependencyBlocks, CreatedBy: 1})
	suite.db.Create(&models.TaskDependency{TaskID: task.ID, DependentTaskID: other.ID, Type: models.DependencyRelatesTo, CreatedBy: 1})

	stats, err := suite.service.TaskStatistics(task.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(1), stats.Dependencies.Blocks)
	assert.Equal(suite.T(), int64(0), stats.Dependencies.BlockedBy)
	assert.Equal(suite.T(), int64(1), stats.Dependencies.RelatesTo)
}

func (suite *StatisticsServiceTestSuite) TestTaskStatistics_Idempotent() {
	task := suite.createTask(1, "todo", "todo")

	_, err := suite.timeService.AddEstimate(member(1), AddEstimateInput{TaskID: task.ID, EstimatedHours: 4})
	suite.Require().NoError(err)

	first, err := suite.service.TaskStatistics(task.ID)
	suite.Require().NoError(err)
	second, err := suite.service.TaskStatistics(task.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), first, second)
}

func (suite *StatisticsServiceTestSuite) TestProjectStatistics_Rollup() {
	assignee := uint64(7)

	done := suite.createTask(1, "done", "done")
	suite.db.Model(done).Update("assignee_id", assignee)
	suite.createTask(1, "todo", "todo")
	suite.createTask(1, "todo", "blocked")
	suite.createTask(2, "todo", "todo") // other project, must not count

	stats, err := suite.service.ProjectStatistics(1)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 3, stats.TotalTasks)
	assert.Equal(suite.T(), 1, stats.CompletedTasks)
	assert.InDelta(suite.T(), 100.0/3, stats.ProjectProgress, 0.0001)
	assert.Equal(suite.T(), 2, stats.TasksByColumn["todo"])
	assert.Equal(suite.T(), 1, stats.TasksByColumn["done"])
	assert.Equal(suite.T(), 1, stats.TasksByStatus["blocked"])
	assert.Equal(suite.T(), 1, stats.TasksByAssignee["7"])
	assert.Equal(suite.T(), 2, stats.TasksByAssignee["unassigned"])
}

func (suite *StatisticsServiceTestSuite) TestProjectStatistics_AverageVarianceOnlyOverMeasuredTasks() {
	measured := suite.createTask(1, "todo", "todo")
	_, err := suite.timeService.AddEstimate(member(1), AddEstimateInput{TaskID: measured.ID, EstimatedHours: 10})
	suite.Require().NoError(err)
	_, _, err = suite.timeService.AddTimeEntry(member(1), AddTimeEntryInput{TaskID: measured.ID, Hours: 15})
	suite.Require().NoError(err)

	// Estimated but never worked on; excluded from the average.
	estimatedOnly := suite.createTask(1, "todo", "todo")
	_, err = suite.timeService.AddEstimate(member(1), AddEstimateInput{TaskID: estimatedOnly.ID, EstimatedHours: 2})
	suite.Require().NoError(err)

	stats, err := suite.service.ProjectStatistics(1)
	suite.Require().NoError(err)

	suite.Require().NotNil(stats.AverageTimeVariance)
	assert.InDelta(suite.T(), 50.0, *stats.AverageTimeVariance, 0.0001)
}

func (suite *StatisticsServiceTestSuite) TestActivityStatistics_CountsAndTopLists() {
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	add := func(action string, userID uint64, at time.Time) {
		suite.db.Create(&models.HistoryEntry{
			Scope:     models.ScopeProject,
			ProjectID: 1,
			Action:    action,
			UserID:    userID,
			CreatedAt: at,
		})
	}

	add(models.ActionTaskCreated, 1, base)
	add(models.ActionTaskCreated, 1, base.Add(time.Hour))
	add(models.ActionTaskMoved, 2, base.Add(24*time.Hour))
	add(models.ActionTimeLogged, 2, base.Add(25*time.Hour))
	add(models.ActionTimeLogged, 3, base.Add(26*time.Hour))

	stats, err := suite.service.ActivityStatistics(1, nil, nil)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 5, stats.TotalEntries)
	assert.Equal(suite.T(), 2, stats.ByAction[models.ActionTaskCreated])
	assert.Equal(suite.T(), 2, stats.ByUser[2])
	assert.Equal(suite.T(), 2, stats.ByDay["2026-08-10"])
	assert.Equal(suite.T(), 3, stats.ByDay["2026-08-11"])

	suite.Require().NotEmpty(stats.TopUsers)
	assert.Equal(suite.T(), uint64(1), stats.TopUsers[0].UserID)
	suite.Require().NotEmpty(stats.TopActions)
	assert.Equal(suite.T(), 2, stats.TopActions[0].Count)
}

func (suite *StatisticsServiceTestSuite) TestActivityStatistics_DateBounds() {
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		suite.db.Create(&models.HistoryEntry{
			Scope:     models.ScopeProject,
			ProjectID: 1,
			Action:    models.ActionTaskCreated,
			UserID:    1,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}

	from := base.Add(12 * time.Hour)
	stats, err := suite.service.ActivityStatistics(1, &from, nil)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 2, stats.TotalEntries)
}

func TestStatisticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatisticsServiceTestSuite))
}
