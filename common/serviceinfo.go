package common

import "os"

const serviceName = "repairx"

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	hostname, err := os.Hostname()
	if err != nil {
		return serviceName + "-unknown"
	}
	return hostname
}
