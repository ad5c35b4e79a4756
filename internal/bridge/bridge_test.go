package bridge

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jcallaghan/sessionlink/internal/testutil"
)

type BridgeSuite struct {
	suite.Suite
	sent []string
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupTest() {
	s.sent = nil
}

func (s *BridgeSuite) hostFunc() HostFunc {
	return func(message string) {
		s.sent = append(s.sent, message)
	}
}

// Outbound tests

func (s *BridgeSuite) TestIsNativeHost() {
	s.True(New(s.hostFunc(), testutil.NopLogger()).IsNativeHost())
	s.False(New(nil, testutil.NopLogger()).IsNativeHost())
}

func (s *BridgeSuite) TestSendEncodesKindAndPayload() {
	b := New(s.hostFunc(), testutil.NopLogger())

	b.Send(KindLogin, "abc123")
	s.Equal([]string{"login|abc123"}, s.sent)
}

func (s *BridgeSuite) TestSendBareKindWhenPayloadEmpty() {
	b := New(s.hostFunc(), testutil.NopLogger())

	b.Send(KindAuthentication, "")
	s.Equal([]string{"authentication"}, s.sent)
}

func (s *BridgeSuite) TestSendNoopOutsideNativeHost() {
	b := New(nil, testutil.NopLogger())

	b.Send(KindLogin, "abc123")
	s.Empty(s.sent)
}

// Inbound tests

func (s *BridgeSuite) TestDeliverTokenReachesSubscription() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub := b.SubscribeTokens()

	b.DeliverToken("abc123")

	s.Equal("abc123", <-sub.Tokens())
}

func (s *BridgeSuite) TestDeliverTokenReachesAllSubscriptions() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub1 := b.SubscribeTokens()
	sub2 := b.SubscribeTokens()

	b.DeliverToken("abc123")

	s.Equal("abc123", <-sub1.Tokens())
	s.Equal("abc123", <-sub2.Tokens())
}

func (s *BridgeSuite) TestCancelRemovesExactlyThatListener() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub1 := b.SubscribeTokens()
	sub2 := b.SubscribeTokens()

	sub1.Cancel()
	b.DeliverToken("abc123")

	_, open := <-sub1.Tokens()
	s.False(open)
	s.Equal("abc123", <-sub2.Tokens())
}

func (s *BridgeSuite) TestCancelIsIdempotent() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub := b.SubscribeTokens()

	sub.Cancel()
	sub.Cancel()

	_, open := <-sub.Tokens()
	s.False(open)
}

func (s *BridgeSuite) TestDeliverAfterCancelIsDropped() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub := b.SubscribeTokens()
	sub.Cancel()

	b.DeliverToken("abc123")

	_, open := <-sub.Tokens()
	s.False(open)
}

func (s *BridgeSuite) TestCloseCancelsAllSubscriptions() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub1 := b.SubscribeTokens()
	sub2 := b.SubscribeTokens()

	b.Close()

	_, open := <-sub1.Tokens()
	s.False(open)
	_, open = <-sub2.Tokens()
	s.False(open)
}

func (s *BridgeSuite) TestSubscribeAfterCloseYieldsClosedChannel() {
	b := New(s.hostFunc(), testutil.NopLogger())
	b.Close()

	sub := b.SubscribeTokens()
	_, open := <-sub.Tokens()
	s.False(open)
}

func (s *BridgeSuite) TestFullBufferDropsInsteadOfBlocking() {
	b := New(s.hostFunc(), testutil.NopLogger())
	sub := b.SubscribeTokens()

	for i := 0; i < tokenBuffer+5; i++ {
		b.DeliverToken("tok")
	}

	// must not have blocked; the buffered tokens are readable
	for i := 0; i < tokenBuffer; i++ {
		s.Equal("tok", <-sub.Tokens())
	}
	select {
	case <-sub.Tokens():
		s.Fail("expected overflow tokens to be dropped")
	default:
	}
}
