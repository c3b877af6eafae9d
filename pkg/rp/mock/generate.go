package mock

//go:generate go install github.com/golang/mock/mockgen@v1.6.0
//go:generate mockgen -package mock -destination ./registry.mock.go github.com/idpkit/backchannel/pkg/rp ClientRegistry
//go:generate mockgen -package mock -destination ./session.mock.go github.com/idpkit/backchannel/pkg/session Registry
