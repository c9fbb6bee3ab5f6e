package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera orbiting a target point.
type Camera struct {
	Target   mgl64.Vec3
	Distance float64
	// Yaw and Pitch are in radians. Pitch is clamped short of the poles.
	Yaw   float64
	Pitch float64
	// FovY is the vertical field of view in degrees.
	FovY      float64
	Near, Far float64
	// OrbitSpeed is radians per screen unit of drag.
	OrbitSpeed float64
}

const maxPitch = math.Pi/2 - 0.01

// NewCamera returns a camera at (0, 1.5, 3) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Distance:   math.Hypot(1.5, 3),
		Pitch:      math.Atan2(1.5, 3),
		FovY:       75,
		Near:       0.1,
		Far:        1000,
		OrbitSpeed: 0.01,
	}
}

// Position returns the eye position in world space.
func (c *Camera) Position() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	offset := mgl64.Vec3{
		c.Distance * cp * math.Sin(c.Yaw),
		c.Distance * math.Sin(c.Pitch),
		c.Distance * cp * math.Cos(c.Yaw),
	}
	return c.Target.Add(offset)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
}

// Projection returns the camera-to-clip matrix for an aspect ratio.
func (c *Camera) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// Orbit rotates the camera around its target by a drag delta.
func (c *Camera) Orbit(dx, dy float64) {
	c.Yaw -= dx * c.OrbitSpeed
	c.Pitch += dy * c.OrbitSpeed
	c.Pitch = mgl64.Clamp(c.Pitch, -maxPitch, maxPitch)
}

// Zoom scales the orbit distance, keeping it positive.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = mgl64.Clamp(c.Distance*factor, c.Near*2, c.Far/2)
}

// Ray casts a ray from the eye through a point in normalised device
// coordinates.
func (c *Camera) Ray(ndcX, ndcY, aspect float64) Ray {
	inv := c.Projection(aspect).Mul4(c.View()).Inv()
	target := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, 0.5}, inv)
	eye := c.Position()
	return Ray{Origin: eye, Direction: target.Sub(eye).Normalize()}
}

// Project maps a world position to normalised device coordinates.
// ok is false for points behind the camera.
func (c *Camera) Project(p mgl64.Vec3, aspect float64) (x, y float64, ok bool) {
	clip := c.Projection(aspect).Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	return clip[0] / clip[3], clip[1] / clip[3], true
}
