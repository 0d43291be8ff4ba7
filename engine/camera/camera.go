// Package camera holds the viewer's position and orientation and turns key
// presses into camera motion.
package camera

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrRotation = errors.New("camera: unknown rotation mode")

// Rotation selects how Orientation (pitch, yaw, roll) becomes a matrix.
type Rotation int

const (
	// RotatePitchYaw applies pitch about X, then yaw about Y. Roll is ignored.
	RotatePitchYaw Rotation = iota
	// RotateFull applies pitch about X, yaw about Y, then roll about Z.
	RotateFull
)

func (r Rotation) String() string {
	switch r {
	case RotatePitchYaw:
		return "pitch-yaw"
	case RotateFull:
		return "full"
	default:
		return fmt.Sprintf("Rotation(%d)", int(r))
	}
}

func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pitch-yaw", "pitchyaw":
		return RotatePitchYaw, nil
	case "full", "pitch-yaw-roll":
		return RotateFull, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrRotation, s)
}

// Matrix returns the camera-to-world rotation for orientation o.
func (r Rotation) Matrix(o mgl32.Vec3) mgl32.Mat3 {
	m := mgl32.Rotate3DY(o[1]).Mul3(mgl32.Rotate3DX(o[0]))
	if r == RotateFull {
		m = mgl32.Rotate3DZ(o[2]).Mul3(m)
	}
	return m
}

// View is the camera state read once per frame.
type View struct {
	Position    mgl32.Vec3
	Orientation mgl32.Vec3
}

// Forward is the world direction of the camera's +Z axis.
func (v View) Forward(r Rotation) mgl32.Vec3 {
	return r.Matrix(v.Orientation).Mul3x1(mgl32.Vec3{0, 0, 1})
}

// Right is the world direction of the camera's +X axis.
func (v View) Right(r Rotation) mgl32.Vec3 {
	return r.Matrix(v.Orientation).Mul3x1(mgl32.Vec3{1, 0, 0})
}

// maxPitch keeps the view off the poles.
const maxPitch = math32.Pi/2 - 0.01

type Camera struct {
	Position    mgl32.Vec3
	Orientation mgl32.Vec3
	Rotation    Rotation

	MoveSpeed   float32
	RotateSpeed float32

	home View
}

func New(position, orientation mgl32.Vec3, rotation Rotation, moveSpeed, rotateSpeed float32) *Camera {
	return &Camera{
		Position:    position,
		Orientation: orientation,
		Rotation:    rotation,
		MoveSpeed:   moveSpeed,
		RotateSpeed: rotateSpeed,
		home:        View{Position: position, Orientation: orientation},
	}
}

func (c *Camera) View() View {
	return View{Position: c.Position, Orientation: c.Orientation}
}

// Apply moves or turns the camera. Horizontal moves follow the current
// orientation; vertical moves follow world Y.
func (c *Camera) Apply(a Action) {
	v := c.View()
	switch a {
	case MoveForward:
		c.Position = c.Position.Add(v.Forward(c.Rotation).Mul(c.MoveSpeed))
	case MoveBackward:
		c.Position = c.Position.Sub(v.Forward(c.Rotation).Mul(c.MoveSpeed))
	case MoveRight:
		c.Position = c.Position.Add(v.Right(c.Rotation).Mul(c.MoveSpeed))
	case MoveLeft:
		c.Position = c.Position.Sub(v.Right(c.Rotation).Mul(c.MoveSpeed))
	case MoveUp:
		c.Position[1] += c.MoveSpeed
	case MoveDown:
		c.Position[1] -= c.MoveSpeed
	case RotateUp:
		c.Orientation[0] -= c.RotateSpeed
	case RotateDown:
		c.Orientation[0] += c.RotateSpeed
	case RotateLeft:
		c.Orientation[1] -= c.RotateSpeed
	case RotateRight:
		c.Orientation[1] += c.RotateSpeed
	case RollLeft:
		c.Orientation[2] += c.RotateSpeed
	case RollRight:
		c.Orientation[2] -= c.RotateSpeed
	case Reset:
		c.Position, c.Orientation = c.home.Position, c.home.Orientation
	}
	if c.Rotation == RotatePitchYaw {
		c.Orientation[0] = mgl32.Clamp(c.Orientation[0], -maxPitch, maxPitch)
	}
}
