package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"
)

// poseTransform adapts an entity's Pose component to the steering
// Transform interface. ark moves component memory between archetypes, so
// the adapter holds the entity handle and resolves the component on
// every access instead of caching the pointer.
type poseTransform struct {
	poses  *ecs.Map1[Pose]
	entity ecs.Entity
}

func newPoseTransform(poses *ecs.Map1[Pose], entity ecs.Entity) *poseTransform {
	return &poseTransform{poses: poses, entity: entity}
}

func (t *poseTransform) Position() mgl64.Vec3     { return t.poses.Get(t.entity).Pos }
func (t *poseTransform) Rotation() mgl64.Quat     { return t.poses.Get(t.entity).Rot }
func (t *poseTransform) SetPosition(p mgl64.Vec3) { t.poses.Get(t.entity).Pos = p }
func (t *poseTransform) SetRotation(r mgl64.Quat) { t.poses.Get(t.entity).Rot = r }
