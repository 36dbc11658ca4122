package registry

import "github.com/mana-battery/svcframework/service"

// RegistrationRecord is one pre-startup registration: an owned factory plus
// where and at what priority it should start.
type RegistrationRecord struct {
	Factory       service.Factory
	Priority      LaunchPriority
	ThreadGroupID ThreadGroupID
}

// StartRecord is the descriptor a ServiceHost receives at start time for
// one service within one priority group.
type StartRecord struct {
	ServiceName string
	Factory     service.Factory
}
