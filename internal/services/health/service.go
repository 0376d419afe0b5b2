package health

// Service reports process liveness. It deliberately checks nothing else.
type Service struct{}

// NewService constructs a health service.
func NewService() *Service {
	return &Service{}
}

// Status returns the health payload.
func (s *Service) Status() map[string]string {
	return map[string]string{"status": "healthy"}
}
