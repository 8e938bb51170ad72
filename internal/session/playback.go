package session

import "math"

func (m *Machine) playerActive() bool {
	return m.state.Page == PagePlayer && m.state.Audio != nil
}

func (m *Machine) togglePlayPause(fx *effects) {
	if !m.playerActive() {
		return
	}
	if m.state.Player.IsPlaying {
		fx.add(TransportPause{})
		return
	}
	fx.add(TransportPlay{})
}

func (m *Machine) seek(fx *effects, seconds float64) {
	if !m.playerActive() || !validPosition(seconds) {
		return
	}
	fx.add(TransportSeek{Seconds: seconds})
}

func (m *Machine) transportStatus(fx *effects, st TransportStatus) {
	if !m.playerActive() {
		return
	}
	m.state.Player = PlayerState{
		IsPlaying:   st.Playing,
		CurrentTime: finiteOrZero(st.CurrentTime),
		Duration:    finiteOrZero(st.Duration),
		IsLoaded:    st.IsLoaded,
		IsBuffering: st.IsBuffering,
	}
	if st.DidJustFinish {
		fx.add(TransportSeek{Seconds: 0})
	}
}

func validPosition(seconds float64) bool {
	return seconds >= 0 && !math.IsInf(seconds, 0) && !math.IsNaN(seconds)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
