package main

import (
	"fmt"
	"os"
	"os/exec"
)

var services = []string{"mysql", "kafka", "redis"}

func main() {
	fmt.Println("🏏 Setting up Cricket Booking development environment")

	if err := checkDocker(); err != nil {
		fmt.Printf("⚠️  Docker issue detected: %v\n", err)
		fmt.Println("💡 You can still run without Docker: DB_DRIVER=memory KAFKA_MOCK_MODE=true go run . serve")
		return
	}

	fmt.Println("✅ Docker is running")
	fmt.Printf("🐳 Starting %v...\n", services)

	cmd := exec.Command("docker-compose", append([]string{"up", "-d"}, services...)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Failed to start services: %v\n", err)
		fmt.Println("💡 Try the in-memory store: DB_DRIVER=memory go run . serve")
		return
	}

	fmt.Println("✅ Services started successfully!")
	fmt.Println("🎯 Run: go run . migrate && go run . seed && REDIS_ADDR=localhost:6379 KAFKA_MOCK_MODE=false go run . serve")
}

func checkDocker() error {
	return exec.Command("docker", "info").Run()
}
