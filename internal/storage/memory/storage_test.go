package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jcallaghan/sessionlink/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Last-used email tests

func (s *StorageSuite) TestGetLastEmailUnset() {
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

func (s *StorageSuite) TestSaveLastEmailOverwrites() {
	_ = s.storage.SaveLastEmail(s.ctx, "old@x.com")
	_ = s.storage.SaveLastEmail(s.ctx, "new@x.com")

	email, err := s.storage.GetLastEmail(s.ctx)
	s.Require().NoError(err)
	s.Equal("new@x.com", email)
}

func (s *StorageSuite) TestSaveEmptyLastEmailIsStored() {
	_ = s.storage.SaveLastEmail(s.ctx, "user@x.com")
	_ = s.storage.SaveLastEmail(s.ctx, "")

	email, err := s.storage.GetLastEmail(s.ctx)
	s.Require().NoError(err)
	s.Equal("", email)
}

// Host token tests

func (s *StorageSuite) TestGetHostTokenUnset() {
	_, err := s.storage.GetHostToken(s.ctx, "android")
	s.ErrorIs(err, model.ErrHostTokenNotFound)
}

func (s *StorageSuite) TestSaveAndGetHostToken() {
	err := s.storage.SaveHostToken(s.ctx, "android", "abc123")
	s.Require().NoError(err)

	token, err := s.storage.GetHostToken(s.ctx, "android")
	s.Require().NoError(err)
	s.Equal("abc123", token)
}

func (s *StorageSuite) TestHostTokensAreScopedByHost() {
	_ = s.storage.SaveHostToken(s.ctx, "android", "abc123")
	_ = s.storage.SaveHostToken(s.ctx, "ios", "def456")

	token, err := s.storage.GetHostToken(s.ctx, "android")
	s.Require().NoError(err)
	s.Equal("abc123", token)
}

func (s *StorageSuite) TestDeleteHostToken() {
	_ = s.storage.SaveHostToken(s.ctx, "android", "abc123")

	err := s.storage.DeleteHostToken(s.ctx, "android")
	s.Require().NoError(err)

	_, err = s.storage.GetHostToken(s.ctx, "android")
	s.ErrorIs(err, model.ErrHostTokenNotFound)
}

func (s *StorageSuite) TestDeleteHostTokenUnsetIsNoop() {
	err := s.storage.DeleteHostToken(s.ctx, "android")
	s.NoError(err)
}
