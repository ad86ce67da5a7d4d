// Package cli implements icarus-cli, an interactive terminal client for the
// ICARUS translation memory server.
//
// The CLI talks to the REST API through internal/client/api and keeps the
// session cookie in memory for the lifetime of the process. Commands:
//
//	register            create an account and log in
//	login               log in
//	logout              end the session
//	projects            list your projects
//	segments <project>  show the segments of a project
//	save <segment>      set the translation of a segment
//	upload              create a project from a local source file
//	delete <project>    delete a project and its segments
//	source <project> [file]
//	                    print a download link for the original file, or
//	                    download it into file
//	help, exit
package cli
