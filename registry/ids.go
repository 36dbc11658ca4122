// Package registry implements the pre-startup service catalog
// (spec.md §4.6): ServiceRegistry, ServiceLaunchPriority, and
// ServiceThreadGroupId.
package registry

// LaunchPriority controls both startup order (higher starts first) and
// which services may be depended upon (a service at priority P may consume
// only services at priority > P).
type LaunchPriority uint32

// ThreadGroupID identifies the thread group a service is pinned to. Zero is
// reserved for the main (cooperative) thread group; values >= 1 are
// allocated monotonically by a ServiceRegistry.
type ThreadGroupID uint32

// MainThreadGroupID is the reserved id for the cooperative main thread
// group.
const MainThreadGroupID ThreadGroupID = 0
