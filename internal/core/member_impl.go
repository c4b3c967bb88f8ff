package core

import "github.com/dkeye/Relay/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	conn   ConnID
	meta   *domain.Member
	signal SignalConnection
}

func NewMemberSession(conn ConnID, meta *domain.Member, signal SignalConnection) MemberSession {
	return &memberSession{conn: conn, meta: meta, signal: signal}
}

func (m *memberSession) Conn() ConnID             { return m.conn }
func (m *memberSession) Meta() *domain.Member     { return m.meta }
func (m *memberSession) Signal() SignalConnection { return m.signal }
