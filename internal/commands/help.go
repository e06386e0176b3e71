package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show help for tend or one of its commands",
	Long:  `Display an overview of all tend commands, or the full help of one command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			target, _, err := rootCmd.Find(args)
			if err != nil || target == rootCmd {
				return fmt.Errorf("unknown help topic %q", args)
			}
			return target.Help()
		}
		fmt.Fprint(cmd.OutOrStdout(), overview)
		return nil
	},
}

const overview = `
████████╗███████╗███╗   ██╗██████╗
╚══██╔══╝██╔════╝████╗  ██║██╔══██╗
   ██║   █████╗  ██╔██╗ ██║██║  ██║
   ██║   ██╔══╝  ██║╚██╗██║██║  ██║
   ██║   ███████╗██║ ╚████║██████╔╝
   ╚═╝   ╚══════╝╚═╝  ╚═══╝╚═════╝

tend - tasks, habits and attendance

TASKS:

  add <title>             Create a task with smart parsing
    -d, --desc            Description
    -w, --workspace       Workspace name or ID
    -t, --tags            Comma-separated tags
    -p, --priority        Priority: low|medium|high
    --due                 Due date (today, tomorrow, dd/mm/yyyy, 3d, 2w)
    --pin                 Pin as a notification until done
    -i, --item            Checklist item (repeatable)

    Smart syntax:
      #tag          Add tags
      @workspace    File under a workspace
      +priority     Set priority (low/medium/high)
      due:3d        Set due date
      !pin          Pin the task

    Example:
      tend add "Pay rent #home @flat +high due:tomorrow" -i "Check amount" -i "Transfer"

  edit <id>               Change fields; --item/--check/--uncheck/--drop edit the checklist
  show <id>               Task details with checklist item IDs
  ls                      List tasks (--todo, --done, -w, -t, -o, --json)
  search <query>          Search title, description and tags
  done / undone <id>      Complete or reopen a task
  pin / unpin <id>        Pin or unpin a task notification
  check / uncheck <item>  Check a checklist item; the last one completes the task
  rm <id>                 Delete a task and its checklist

ORGANIZE:

  workspace add|edit|ls|archive|unarchive|rm
  habit add|ls|log|unlog|archive|rm|stats
  course add|ls|attend|unattend|rm|stats

VIEWS:

  timeline                Deadlines and classes day by day (--mode DEFAULT|COLOR)
  ui                      Live interactive task list
  watch                   Stream summaries as data changes
  notifications           Pinned notifications (--sync to rebuild)

SETTINGS:

  config show             Resolved configuration
  config timeline-mode    Get or set DEFAULT|COLOR

Run 'tend help <command>' for the flags of one command.

`
