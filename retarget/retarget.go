// Package retarget converts humanoid animation clips authored for Mixamo or
// BVH rigs into clips for VRM humanoid skeletons.
package retarget

import "github.com/binzume/vrmanim/anim"

// FromMixamo converts a clip of a Mixamo rig.
func FromMixamo(clip *anim.Clip, skel Skeleton, rootMotion bool) (*anim.Clip, error) {
	return BuildClip(clip, skel, Mixamo, &Options{RootMotion: rootMotion})
}

// FromBVHViewer converts a BVH clip using bvh web viewer joint names.
func FromBVHViewer(clip *anim.Clip, skel Skeleton, rootMotion bool) (*anim.Clip, error) {
	return BuildClip(clip, skel, BvhViewer, &Options{RootMotion: rootMotion})
}

// FromTDPT converts a BVH clip exported by TDPT.
func FromTDPT(clip *anim.Clip, skel Skeleton, rootMotion bool) (*anim.Clip, error) {
	return BuildClip(clip, skel, Tdpt, &Options{RootMotion: rootMotion})
}
