package config

import "os"

func IsDebug() bool {
	return os.Getenv("MEDHELP_DEBUG") == "1"
}
