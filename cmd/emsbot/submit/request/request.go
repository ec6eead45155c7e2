package request

import (
	"bytes"
	"emsbot/internal/cli"
	"emsbot/internal/common"
	"emsbot/internal/requests"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	flags.AddToCommand(Command)
}

var flags cli.Flags = cli.Flags{
	{
		Name:         "file",
		Short:        'f',
		DefaultValue: "",
		Usage:        "defines the path to a yaml submission spec",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "addr",
		DefaultValue: "http://localhost:8080",
		Usage:        "defines the address of the bot's http api",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "auth-token",
		DefaultValue: "",
		Usage:        "when set, sent as the bearer token to the http api",
		Type:         cli.FlagTypeString,
	},
}

var Command = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req", "r"},
	Short:   "Submits a request via the http api",
	Long:    "Submits a request via the http api, going through the same validation, mention resolution, and notification flow as a submission from chat",
	PreRun: func(cmd *cobra.Command, args []string) {
		flags.BindViper(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := viper.GetString("file")
		if filePath == "" {
			return fmt.Errorf("failed to receive a submission spec, specify one with --file")
		}
		submission, err := requests.LoadSubmissionFromFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to load the submission spec: %s", err)
		}

		body, err := json.Marshal(submission)
		if err != nil {
			return fmt.Errorf("failed to marshal the submission: %s", err)
		}
		endpoint := viper.GetString("addr") + "/api/v1/requests"
		httpRequest, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create a request to url[%s]: %s", endpoint, err)
		}
		httpRequest.Header.Set("Content-Type", "application/json")
		if authToken := viper.GetString("auth-token"); authToken != "" {
			httpRequest.Header.Set("Authorization", "Bearer "+authToken)
		}

		httpResponse, err := http.DefaultClient.Do(httpRequest)
		if err != nil {
			return fmt.Errorf("failed to reach the http api at url[%s]: %s", endpoint, err)
		}
		defer httpResponse.Body.Close()
		responseBody, err := io.ReadAll(httpResponse.Body)
		if err != nil {
			return fmt.Errorf("failed to read the response: %s", err)
		}

		var response common.HttpResponse
		if err := json.Unmarshal(responseBody, &response); err != nil {
			return fmt.Errorf("failed to parse the response: %s", err)
		}
		if !response.Success {
			return fmt.Errorf("failed to submit the request: %s (%v)", response.Message, response.Data)
		}

		logrus.Infof("submitted a %s request", submission.Kind.Title())
		output, err := json.MarshalIndent(response.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format the response: %s", err)
		}
		fmt.Println(string(output))
		return nil
	},
}
