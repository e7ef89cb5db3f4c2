// Package main prints a bcrypt hash for ADMIN_PASSWORD_HASH. The password is read from stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/pkg/utils"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	fmt.Fprint(os.Stderr, "admin password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		logger.Fatal("read password", zap.Error(err))
	}
	hash, err := utils.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}
	fmt.Println(hash)
}
