package pkg

const (
	AppName    = "Pollroom"
	AppVersion = "1.0.0"
)
