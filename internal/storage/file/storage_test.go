package file

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jcallaghan/sessionlink/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "creds", "credentials.json")
	s.storage = New(s.path)
	s.ctx = context.Background()
}

func (s *StorageSuite) TestGetLastEmailMissingFile() {
	_, err := s.storage.GetLastEmail(s.ctx)
	s.ErrorIs(err, model.ErrEmailNotFound)
}

func (s *StorageSuite) TestSaveAndGetLastEmail() {
	err := s.storage.SaveLastEmail(s.ctx, "user@x.com")
	s.Require().NoError(err)

	email, err := s.storage.GetLastEmail(s.ctx)
	s.Require().NoError(err)
	s.Equal("user@x.com", email)
}

func (s *StorageSuite) TestValuesSurviveReopen() {
	_ = s.storage.SaveLastEmail(s.ctx, "user@x.com")
	_ = s.storage.SaveHostToken(s.ctx, "android", "abc123")

	reopened := New(s.path)

	email, err := reopened.GetLastEmail(s.ctx)
	s.Require().NoError(err)
	s.Equal("user@x.com", email)

	token, err := reopened.GetHostToken(s.ctx, "android")
	s.Require().NoError(err)
	s.Equal("abc123", token)
}

func (s *StorageSuite) TestSaveEmptyLastEmailIsStored() {
	_ = s.storage.SaveLastEmail(s.ctx, "user@x.com")
	_ = s.storage.SaveLastEmail(s.ctx, "")

	email, err := s.storage.GetLastEmail(s.ctx)
	s.Require().NoError(err)
	s.Equal("", email)
}

func (s *StorageSuite) TestHostTokens() {
	_, err := s.storage.GetHostToken(s.ctx, "android")
	s.ErrorIs(err, model.ErrHostTokenNotFound)

	_ = s.storage.SaveHostToken(s.ctx, "android", "abc123")
	_ = s.storage.SaveHostToken(s.ctx, "ios", "def456")

	token, err := s.storage.GetHostToken(s.ctx, "ios")
	s.Require().NoError(err)
	s.Equal("def456", token)

	s.Require().NoError(s.storage.DeleteHostToken(s.ctx, "ios"))
	_, err = s.storage.GetHostToken(s.ctx, "ios")
	s.ErrorIs(err, model.ErrHostTokenNotFound)
}
