package logging

import "fmt"

// GenerateLogrotateConfig renders a logrotate(8) stanza for the opsmon log
// directory, for installation under /etc/logrotate.d/
func GenerateLogrotateConfig() string {
	return fmt.Sprintf(`# Logrotate configuration for opsmon
# Install: sudo cp this file to /etc/logrotate.d/opsmon

%s/*.log {
    daily
    rotate 14
    compress
    delaycompress
    missingok
    notifempty
    create 0644 opsmon opsmon
    sharedscripts
    postrotate
        systemctl reload opsmon 2>/dev/null || true
    endscript
}
`, "/var/log/opsmon")
}
