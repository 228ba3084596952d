package service

import "fmt"

func welcomeEmailTemplate(email string) (string, string) {
	subject := "Welcome to Files Manager!"
	body := fmt.Sprintf(`Welcome %s!

Your account is ready. Upload files and folders, share the ones you make public,
and fetch resized versions of your images with the size parameter (500, 250 or 100).

Best,
The Files Manager Team`, email)

	return subject, body
}
