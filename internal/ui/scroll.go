package ui

import "github.com/charmbracelet/harmonica"

// scrollSpring eases the viewport origin toward its target, so keyboard
// scrolling glides instead of jumping.
type scrollSpring struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newScrollSpring() scrollSpring {
	return scrollSpring{spring: harmonica.NewSpring(harmonica.FPS(20), 8.0, 1.0)}
}

// snap places the spring directly at pos with no residual motion.
func (s *scrollSpring) snap(pos float64) {
	s.pos = pos
	s.vel = 0
}

func (s *scrollSpring) step(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}
