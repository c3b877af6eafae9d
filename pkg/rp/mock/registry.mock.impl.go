package mock

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/idpkit/backchannel/pkg/rp"
)

func NewClientRegistry(t *testing.T) rp.ClientRegistry {
	return NewMockClientRegistry(gomock.NewController(t))
}

func NewClientRegistryExpectRegistration(t *testing.T, registration *rp.ClientRegistration) rp.ClientRegistry {
	m := NewClientRegistry(t)
	ExpectRegistration(m, registration)
	return m
}

func NewClientRegistryExpectNotFound(t *testing.T) rp.ClientRegistry {
	m := NewClientRegistry(t)
	ExpectRegistrationNotFound(m)
	return m
}

func ExpectRegistration(c rp.ClientRegistry, registration *rp.ClientRegistration) {
	mockC := c.(*MockClientRegistry)
	mockC.EXPECT().FindByRegistrationID(gomock.Any(), registration.RegistrationID).AnyTimes().Return(registration, nil)
}

func ExpectRegistrationNotFound(c rp.ClientRegistry) {
	mockC := c.(*MockClientRegistry)
	mockC.EXPECT().FindByRegistrationID(gomock.Any(), gomock.Any()).AnyTimes().Return(nil, rp.ErrRegistrationNotFound)
}
