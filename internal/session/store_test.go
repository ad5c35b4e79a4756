package session

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jcallaghan/sessionlink/internal/model"
)

type StoreSuite struct {
	suite.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = New()
}

func (s *StoreSuite) TestEmptyByDefault() {
	s.Nil(s.store.User())
	s.False(s.store.Authenticated())
}

func (s *StoreSuite) TestSetUser() {
	user := &model.User{ID: 1, Name: "User"}
	s.store.SetUser(user)

	s.True(s.store.Authenticated())
	s.Equal(user, s.store.User())
}

func (s *StoreSuite) TestLastWriteWins() {
	s.store.SetUser(&model.User{ID: 1})
	s.store.SetUser(&model.User{ID: 2})

	s.Equal(2, s.store.User().ID)
}

func (s *StoreSuite) TestClear() {
	s.store.SetUser(&model.User{ID: 1})
	s.store.Clear()

	s.False(s.store.Authenticated())
}
