package services

import "github.com/amire/crewboard/internal/ports"

type discardEvents struct{}

func (discardEvents) Publish(string, any) {}

func publisherOrDiscard(p ports.EventPublisher) ports.EventPublisher {
	if p == nil {
		return discardEvents{}
	}
	return p
}
