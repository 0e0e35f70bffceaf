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

// AuthServiceTestSuite defines the test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

// SetupTest runs before each test
func (suite *AuthServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{})
	suite.Require().NoError(err)

	suite.service = NewAuthService(repository.NewUserRepository(suite.db))
}

// TearDownTest runs after each test
func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) TestSignupAndLogin() {
	user, err := suite.service.Signup(SignupInput{Username: "alice", Password: "sup3rsecret"})
	suite.Require().NoError(err)
	assert.NotEqual(suite.T(), "sup3rsecret", user.PasswordHash)

	logged, err := suite.service.Login(LoginInput{Username: "alice", Password: "sup3rsecret"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), user.ID, logged.ID)
}

func (suite *AuthServiceTestSuite) TestSignup_DuplicateUsername() {
	_, err := suite.service.Signup(SignupInput{Username: "alice", Password: "sup3rsecret"})
	suite.Require().NoError(err)

	_, err = suite.service.Signup(SignupInput{Username: "alice", Password: "otherpassword"})
	assert.ErrorIs(suite.T(), err, ErrUsernameTaken)
}

func (suite *AuthServiceTestSuite) TestSignup_ShortPassword() {
	_, err := suite.service.Signup(SignupInput{Username: "alice", Password: "short"})
	assert.ErrorIs(suite.T(), err, ErrPasswordTooShort)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	_, err := suite.service.Signup(SignupInput{Username: "alice", Password: "sup3rsecret"})
	suite.Require().NoError(err)

	_, err = suite.service.Login(LoginInput{Username: "alice", Password: "wrongpassword"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownUser() {
	_, err := suite.service.Login(LoginInput{Username: "ghost", Password: "whatever123"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
