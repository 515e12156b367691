package main

import (
	"beat0050/cmd"
	"fmt"
	"log"
	"os"
)

func main() {
	fmt.Println(os.Getenv("commit_hash"))
	apiHandler, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(apiHandler.ApiPort)
	if err != nil {
		log.Fatal(err)
	}
}
