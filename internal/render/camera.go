package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective look-at camera.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FOV       float32
	NearPlane float32
	FarPlane  float32
}

func NewCamera(fov, near, far float32) *Camera {
	return &Camera{
		Position:  mgl32.Vec3{0, 0, 3},
		Up:        mgl32.Vec3{0, 1, 0},
		FOV:       fov,
		NearPlane: near,
		FarPlane:  far,
	}
}

func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.NearPlane, c.FarPlane)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// PushConstants implements CameraSource.
func (c *Camera) PushConstants(aspect float32) PushConstants {
	return PushConstants{Proj: c.ProjectionMatrix(aspect), View: c.ViewMatrix()}
}

// Orbit places the camera on a circle of radius around center, height above
// it, at angle radians, looking at center.
func (c *Camera) Orbit(center mgl32.Vec3, radius, height, angle float32) {
	s, co := math.Sincos(float64(angle))
	c.Position = center.Add(mgl32.Vec3{radius * float32(co), height, radius * float32(s)})
	c.Target = center
}
